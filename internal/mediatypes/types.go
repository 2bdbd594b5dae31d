package mediatypes

import "strings"

// FileType classifies a discovered media file.
type FileType string

const (
	// FileTypeImage represents a still image that can be perceptually hashed.
	FileTypeImage FileType = "image"
	// FileTypeAnimation represents an animated image (gif/apng).
	FileTypeAnimation FileType = "animation"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// ImageExtensions maps file extensions to whether they are supported still
// image formats.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".avif": true,
	".jxl":  true,
}

// AnimationExtensions maps file extensions to animated image formats.
var AnimationExtensions = map[string]bool{
	".gif":  true,
	".apng": true,
}

// VideoExtensions maps file extensions to video formats commonly produced by
// download tools.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".mov":  true,
	".m4v":  true,
	".ts":   true,
}

// hashableExtensions are the formats the duplicate detector can decode.
// gif is included because the first frame is sufficient for similarity.
var hashableExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
	".tif":  true,
	".gif":  true,
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g. ".jpg").
// Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	if AnimationExtensions[ext] {
		return FileTypeAnimation
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// IsMedia reports whether the extension belongs to any recognized media type.
func IsMedia(ext string) bool {
	return GetFileType(ext) != FileTypeOther
}

// IsHashable reports whether the duplicate detector can compute a perceptual
// hash for files with this extension. The extension is matched
// case-insensitively; on-disk names are not guaranteed to be lowercase.
func IsHashable(ext string) bool {
	return hashableExtensions[strings.ToLower(ext)]
}
