package sniff

import (
	"context"
	"log/slog"

	"github.com/certhound/certhound/internal/cdxprops"
	"github.com/certhound/certhound/internal/model"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// Detector plugs Classify into the scan pipeline. It is stateless and safe
// to share between workers.
type Detector struct{}

// Detect classifies the blob and records path plus format as a CycloneDX
// component. UNKNOWN blobs map to model.ErrNoMatch.
func (d Detector) Detect(ctx context.Context, b []byte, path string) ([]model.Detection, error) {
	format := Classify(b)
	slog.DebugContext(ctx, "classified blob", "format", format, "bytes", len(b))
	if format == FormatUnknown {
		return nil, model.ErrNoMatch
	}

	component := cdxprops.MaterialComponent(path, string(format), len(b))
	return []model.Detection{{
		Path:       path,
		Components: []cdx.Component{component},
	}}, nil
}

func (d Detector) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("detector", "sniff"),
	}
}
