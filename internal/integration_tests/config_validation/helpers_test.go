package integration_tests

// Shared fixtures: the trainconfig runner manifest and a mirror of the
// shipped "nerf" profile. The profile must declare every param the
// TrainConfig struct carries, or startup parity validation fails.

const trainconfigManifestHCL = `
	runner "trainconfig" {
	  lifecycle { on_run = "OnRunTrainConfig" }
	  input "path" { type = string }
	  input "profile" {
	    type    = string
	    default = "nerf"
	  }
	  input "overrides" {
	    type    = map(string)
	    default = {}
	  }
	  output "expname" { type = string }
	  output "values" { type = map(string) }
	}
`

const nerfProfileHCL = `
	profile "nerf" {
	  param "expname" { type = string }
	  param "basedir" {
	    type    = string
	    default = "./logs"
	  }
	  param "datadir" { type = string }
	  param "dataset_type" {
	    type    = string
	    default = "llff"
	  }
	  param "no_batching" {
	    type    = bool
	    default = false
	  }
	  param "use_viewdirs" {
	    type    = bool
	    default = false
	  }
	  param "white_bkgd" {
	    type    = bool
	    default = false
	  }
	  param "half_res" {
	    type    = bool
	    default = false
	  }
	  param "lrate" {
	    type    = number
	    default = 0.0005
	  }
	  param "lrate_decay" {
	    type    = number
	    default = 250
	  }
	  param "N_samples" {
	    type    = number
	    default = 64
	  }
	  param "N_importance" {
	    type    = number
	    default = 0
	  }
	  param "N_rand" {
	    type    = number
	    default = 4096
	  }
	  param "precrop_iters" {
	    type    = number
	    default = 0
	  }
	  param "precrop_frac" {
	    type    = number
	    default = 0.5
	  }
	}
`
