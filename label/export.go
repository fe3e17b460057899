package label

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// ExportFields is the fragment used when exporting labels: the response
// document plus the asset it belongs to.
const ExportFields = "id jsonResponse labelType createdAt asset { id externalId }"

// ExportRaw writes the labels as an indented JSON document.
func ExportRaw(w io.Writer, labels []Label) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(labels); err != nil {
		return fmt.Errorf("encode labels: %w", err)
	}
	return nil
}

// Classes extracts the category codes of an object-detection labeling
// interface, sorted so that class indices are stable across exports.
func Classes(jsonInterface []byte) ([]string, error) {
	var doc struct {
		Jobs map[string]struct {
			Content struct {
				Categories map[string]struct {
					Name string `json:"name"`
				} `json:"categories"`
			} `json:"content"`
		} `json:"jobs"`
	}
	if err := json.Unmarshal(jsonInterface, &doc); err != nil {
		return nil, fmt.Errorf("parse labeling interface: %w", err)
	}

	seen := map[string]struct{}{}
	var classes []string
	for _, job := range doc.Jobs {
		for code := range job.Content.Categories {
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			classes = append(classes, code)
		}
	}
	sort.Strings(classes)
	return classes, nil
}

// ClassIndex maps every class to its position in the classes list.
func ClassIndex(classes []string) map[string]int {
	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return idx
}

type yoloResponse map[string]struct {
	Annotations []struct {
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
		BoundingPoly []struct {
			NormalizedVertices []struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"normalizedVertices"`
		} `json:"boundingPoly"`
	} `json:"annotations"`
}

// YOLOLines converts the bounding boxes of one label response into YOLO rows:
// "<class> <x_center> <y_center> <width> <height>", all coordinates
// normalized. Annotations without a known class or a bounding polygon are
// skipped.
func YOLOLines(l Label, classes map[string]int) ([]string, error) {
	var resp yoloResponse
	if err := json.Unmarshal(l.JSONResponse, &resp); err != nil {
		return nil, fmt.Errorf("parse label %s response: %w", l.ID, err)
	}

	var lines []string
	for _, job := range resp {
		for _, ann := range job.Annotations {
			if len(ann.Categories) == 0 || len(ann.BoundingPoly) == 0 {
				continue
			}
			idx, ok := classes[ann.Categories[0].Name]
			if !ok {
				continue
			}
			vertices := ann.BoundingPoly[0].NormalizedVertices
			if len(vertices) == 0 {
				continue
			}

			minX, maxX := vertices[0].X, vertices[0].X
			minY, maxY := vertices[0].Y, vertices[0].Y
			for _, v := range vertices[1:] {
				if v.X < minX {
					minX = v.X
				}
				if v.X > maxX {
					maxX = v.X
				}
				if v.Y < minY {
					minY = v.Y
				}
				if v.Y > maxY {
					maxY = v.Y
				}
			}

			lines = append(lines, fmt.Sprintf("%d %.6f %.6f %.6f %.6f",
				idx, (minX+maxX)/2, (minY+maxY)/2, maxX-minX, maxY-minY))
		}
	}
	return lines, nil
}
