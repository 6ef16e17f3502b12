package models

// Output file suffixes written next to each processed image
const (
	SuffixWide     = ".twitter.png"
	SuffixBoxFit   = ".pixiv.png"
	SuffixOriginal = ".origin.png"
)

// ImageTask is one batch item, created when the batch starts
type ImageTask struct {
	// Index is the position of the item in the input list
	Index int

	// SourcePath is the image to process
	SourcePath string

	// BaseName is the file name without its .png extension
	BaseName string

	// OutputDir receives the three artifacts
	OutputDir string

	// Original is filled in once the image header has been decoded
	Original Dimensions
}

// OutputPaths lists the artifacts written for one image
type OutputPaths struct {
	Wide     string `json:"wide"`
	BoxFit   string `json:"box_fit"`
	Original string `json:"original"`
}

// ProcessResult is the outcome of one batch item
type ProcessResult struct {
	SourcePath string       `json:"source_path"`
	Success    bool         `json:"success"`
	Outputs    *OutputPaths `json:"outputs,omitempty"`
	OutputDir  string       `json:"output_dir,omitempty"`
	Original   Dimensions   `json:"original,omitempty"`
	Wide       Dimensions   `json:"wide,omitempty"`
	BoxFit     Dimensions   `json:"box_fit,omitempty"`
	Error      string       `json:"error,omitempty"`
}
