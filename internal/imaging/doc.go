// Package imaging is the I/O side of the editor: it turns files, URLs and
// inline data into decoded images, and decoded images back into encoded bytes.
//
// # Sources
//
// ImageCache loads PNG, JPEG, GIF, BMP, TIFF and WebP sources from disk,
// http(s) URLs or base64 data. Every source is checked against a byte limit
// (10 MiB by default) before decoding and has its EXIF orientation applied.
// Path and URL sources are cached by key.
//
// # Outputs
//
// Export encodes PNG or lossless WebP and suggests a download filename.
// EncodePreview produces a base64 PNG for protocol responses, and CropOverlay
// draws crop chrome over a rendered image for previews.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// Rectangles are half-open: Min is inclusive, Max is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and never modify their input images.
package imaging
