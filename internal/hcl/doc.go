// Package hcl is the concrete HCL implementation of the loading and data
// conversion interfaces declared in the `config` package. It handles file
// discovery and parsing, HCL-to-model translation (including profile and
// manifest type expressions), and CTY-to-Go data binding.
package hcl
