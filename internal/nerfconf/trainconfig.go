package nerfconf

// TrainConfig is the canonical typed view of a NeRF trainer configuration
// record. Field tags name the keys as they appear in the text files; the
// "nerf" profile manifest declares the same surface and the registry checks
// the two against each other at startup.
type TrainConfig struct {
	ExpName     string `nerf:"expname"`
	BaseDir     string `nerf:"basedir"`
	DataDir     string `nerf:"datadir"`
	DatasetType string `nerf:"dataset_type"`

	NoBatching  bool `nerf:"no_batching"`
	UseViewDirs bool `nerf:"use_viewdirs"`
	WhiteBkgd   bool `nerf:"white_bkgd"`
	HalfRes     bool `nerf:"half_res"`

	LRate      float64 `nerf:"lrate"`
	LRateDecay int     `nerf:"lrate_decay"`

	NSamples    int `nerf:"N_samples"`
	NImportance int `nerf:"N_importance"`
	NRand       int `nerf:"N_rand"`

	PrecropIters int     `nerf:"precrop_iters"`
	PrecropFrac  float64 `nerf:"precrop_frac"`
}
