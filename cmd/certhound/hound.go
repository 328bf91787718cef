package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	"github.com/certhound/certhound/internal/bom"
	"github.com/certhound/certhound/internal/model"
	"github.com/certhound/certhound/internal/scan"
	"github.com/certhound/certhound/internal/sniff"
	"github.com/certhound/certhound/internal/walk"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"golang.org/x/sync/errgroup"
)

// Hound encapsulates one scan run: it walks the configured sources, feeds
// every file through the format detectors and assembles the resulting BOM.
type Hound struct {
	limit       int
	detectors   []scan.Detector
	filesystems iter.Seq2[walk.Entry, error]
	containers  iter.Seq2[walk.Entry, error]
}

func NewHound(ctx context.Context, config model.Config) (Hound, error) {
	if err := config.Validate(); err != nil {
		return Hound{}, err
	}

	filesystems, err := filesystems(ctx, config.Filesystem)
	if err != nil {
		slog.WarnContext(ctx, "initializing filesystem scan failed", "error", err)
		filesystems = nil
	}

	containers := containers(ctx, config.Containers)

	return Hound{
		limit:       config.WorkerLimit(),
		detectors:   []scan.Detector{sniff.Detector{}},
		filesystems: filesystems,
		containers:  containers,
	}, nil
}

func (h Hound) Do(ctx context.Context, out io.Writer) error {
	g, ctx := errgroup.WithContext(ctx)

	b := bom.NewBuilder()
	detections := make(chan model.Detection)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for d := range detections { // will be closed after g.Wait()
			b.AppendComponents(d.Components...)
		}
	}()

	if h.filesystems != nil {
		b.AppendProperties(cdx.Property{Name: "certhound:scan:source", Value: "filesystem"})
		scanner := scan.New(h.limit, h.detectors)
		g.Go(func() error {
			goScan(ctx, scanner, h.filesystems, detections)
			return nil
		})
	}

	if h.containers != nil {
		b.AppendProperties(cdx.Property{Name: "certhound:scan:source", Value: "containers"})
		scanner := scan.New(h.limit, h.detectors)
		g.Go(func() error {
			goScan(ctx, scanner, h.containers, detections)
			return nil
		})
	}

	_ = g.Wait()
	close(detections)
	<-drained

	err := b.AsJSON(out)
	if err != nil {
		return fmt.Errorf("formatting BOM as JSON: %w", err)
	}
	return nil
}

func goScan(ctx context.Context, scanner *scan.Scan, seq iter.Seq2[walk.Entry, error], detections chan<- model.Detection) {
	for results, err := range scanner.Do(ctx, seq) {
		if err != nil {
			slog.DebugContext(ctx, "entry skipped", "error", err)
			continue
		}
		for _, detection := range results {
			detections <- detection
		}
	}
}

func filesystems(ctx context.Context, cfg model.Filesystem) (iter.Seq2[walk.Entry, error], error) {
	var filesystems iter.Seq2[walk.Entry, error]
	if !cfg.Enabled {
		return filesystems, nil
	}

	paths := cfg.Paths
	if len(paths) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return filesystems, fmt.Errorf("getting working directory: %w", err)
		}
		paths = []string{cwd}
	}

	roots := make([]*os.Root, 0, len(paths))
	for _, path := range paths {
		root, err := os.OpenRoot(path)
		if err != nil {
			slog.WarnContext(ctx, "can't open dir, skipping", "dir", path, "error", err)
			continue
		}
		roots = append(roots, root)
	}
	ret := walk.Roots(ctx, roots...)
	return ret, nil
}

func containers(ctx context.Context, config model.Containers) iter.Seq2[walk.Entry, error] {
	if !config.Enabled {
		return nil
	}

	ret := walk.Images(ctx, config.Images)
	return ret
}
