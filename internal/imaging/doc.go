// Package imaging turns source images into Gabor filter input and filter
// output back into images for the MCP server.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y downward. Regions are half-open: (x1,y1) is
// inclusive, (x2,y2) exclusive.
//
// # Source Conversion
//
// ToPlane crops a region, optionally downsizes it and extracts one scalar
// channel as a float32 plane in [0, 255]: Rec. 601 luma or CIE L*
// lightness. Translucent sources also yield an alpha mask whose zero
// entries the filter engine skips.
//
// # Rendering
//
// RenderPlane, RenderOrientationMap and RenderFilterBank produce base64
// PNGs of response planes, a hue-coded dominant orientation map and the
// filter coefficients. BoxOverlay outlines regions on the source image.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. All other functions are stateless.
package imaging
