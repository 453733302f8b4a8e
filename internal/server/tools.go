package server

import "github.com/ironsheep/gabor-tools-mcp/internal/gabor"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func boxSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x1": map[string]interface{}{"type": "integer", "description": "Left edge X coordinate (0-based)"},
			"y1": map[string]interface{}{"type": "integer", "description": "Top edge Y coordinate (0-based)"},
			"x2": map[string]interface{}{"type": "integer", "description": "Right edge X coordinate (exclusive)"},
			"y2": map[string]interface{}{"type": "integer", "description": "Bottom edge Y coordinate (exclusive)"},
		},
		"required": []string{"x1", "y1", "x2", "y2"},
	}
}

func bankProperties() map[string]interface{} {
	return map[string]interface{}{
		"filter_size": map[string]interface{}{
			"type":        "integer",
			"enum":        gabor.SupportedFilterSizes,
			"description": "Filter width and height in pixels. Wavelength and sigma scale with it unless given.",
		},
		"orientations": map[string]interface{}{
			"type":        "integer",
			"description": "Number of evenly spaced filter orientations over 180 degrees (1-64)",
		},
		"wavelength": map[string]interface{}{
			"type":        "number",
			"description": "Carrier wavelength in pixels",
		},
		"sigma": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian envelope standard deviation in pixels",
		},
		"aspect": map[string]interface{}{
			"type":        "number",
			"description": "Envelope aspect ratio across the carrier (0-1]",
		},
		"circle_edge": map[string]interface{}{
			"type":        "boolean",
			"description": "Zero coefficients outside the inscribed circle",
		},
	}
}

func paramProperties() map[string]interface{} {
	return map[string]interface{}{
		"gain_constant": map[string]interface{}{
			"type":        "number",
			"description": "Target magnitude of a fully normalized response",
		},
		"edge_mode": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"constrained", "sweepoff"},
			"description": "constrained shrinks the output by filter_size-1; sweepoff keeps the input size and fills off-image pixels",
		},
		"off_image_fill": map[string]interface{}{
			"type":        "number",
			"description": "Value sweepoff uses outside the image box",
		},
		"phase_mode": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"single", "dual"},
			"description": "single keeps positive responses; dual adds a plane per orientation for negative responses",
		},
		"normalize_method": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"fixed", "max", "mean", "maxpower", "meanpower"},
			"description": "Statistic the gain is derived from",
		},
		"normalize_scope": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"global", "perorient"},
			"description": "One gain for the whole bank or one per orientation",
		},
		"phase_norm": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"combo", "indiv"},
			"description": "Share one statistic between phases or normalize each phase on its own",
		},
		"post_process": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"raw", "sigmoid", "threshold"},
			"description": "Lookup table applied to each gained response",
		},
		"post_proc_slope": map[string]interface{}{
			"type":        "number",
			"description": "Sigmoid steepness",
		},
		"post_proc_midpoint": map[string]interface{}{
			"type":        "number",
			"description": "Sigmoid centre or threshold, as a fraction of the table",
		},
		"post_proc_min": map[string]interface{}{
			"type":        "number",
			"description": "Lowest table value",
		},
		"post_proc_max": map[string]interface{}{
			"type":        "number",
			"description": "Highest table value",
		},
		"lut_bins": map[string]interface{}{
			"type":        "integer",
			"description": "Lookup table length (default 256)",
		},
	}
}

func merge(maps ...map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{})
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and whether it carries transparency.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},

		// Filter Bank
		{
			Name:        "gabor_filter_bank",
			Description: "Build a Gabor filter bank and return its parameters with a tiled image of every filter (mid gray is zero).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(bankProperties(), map[string]interface{}{
					"upscale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer zoom for the rendered bank. Default 8",
						"default":     8,
					},
				}),
			},
		},
		{
			Name:        "gabor_lut",
			Description: "Return the post-processing lookup table and the scalar that maps gained responses onto it.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": paramProperties(),
			},
		},

		// Filtering
		{
			Name:        "gabor_compute",
			Description: "Filter an image with a Gabor bank. Returns a result_id plus per-plane response statistics; the response planes are kept for the gabor_response_plane, gabor_orientation_map and gabor_roi_overlay tools.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": merge(bankProperties(), paramProperties(), map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
					"region":    boxSchema("Part of the source image to filter. Default is the whole image"),
					"roi":       boxSchema("Region of interest in filter input coordinates (after region crop and downsizing)"),
					"image_box": boxSchema("Part of the filter input holding real image data. Must contain roi"),
					"channel": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"luma", "lightness"},
						"description": "Scalar extracted from colour images",
					},
					"max_dimension": map[string]interface{}{
						"type":        "integer",
						"description": "Downsize regions larger than this. 0 disables downsizing",
					},
					"use_alpha": map[string]interface{}{
						"type":        "boolean",
						"description": "Suppress responses at transparent pixels. Default true",
						"default":     true,
					},
				}),
				"required": []string{"path"},
			},
		},

		// Stored Results
		{
			Name:        "gabor_response_plane",
			Description: "Render one response plane of a stored result as a grayscale PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"result_id": map[string]interface{}{
						"type":        "string",
						"description": "Identifier returned by gabor_compute",
					},
					"orientation": map[string]interface{}{
						"type":        "integer",
						"description": "Orientation index (0-based)",
					},
					"phase": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"positive", "negative"},
						"description": "negative is only available for dual phase results. Default positive",
					},
					"upscale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer zoom. Default 1",
					},
					"white": map[string]interface{}{
						"type":        "number",
						"description": "Response rendered as white. Default is the plane maximum",
					},
				},
				"required": []string{"result_id", "orientation"},
			},
		},
		{
			Name:        "gabor_orientation_map",
			Description: "Render the dominant orientation at each pixel of a stored result. Hue encodes angle and brightness encodes strength.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"result_id": map[string]interface{}{
						"type":        "string",
						"description": "Identifier returned by gabor_compute",
					},
					"upscale": map[string]interface{}{
						"type":        "integer",
						"description": "Integer zoom. Default 1",
					},
				},
				"required": []string{"result_id"},
			},
		},
		{
			Name:        "gabor_roi_overlay",
			Description: "Draw the source region, region of interest and responding pixels of a stored result on the source image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"result_id": map[string]interface{}{
						"type":        "string",
						"description": "Identifier returned by gabor_compute",
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Box color in hex (e.g., '#FF0000' or '#FF000080'). Default semi-transparent red",
					},
				},
				"required": []string{"result_id"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
