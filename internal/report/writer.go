package report

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/banshee-data/telemetry.report/internal/fsutil"
	"github.com/banshee-data/telemetry.report/internal/monitoring"
	"github.com/banshee-data/telemetry.report/internal/security"
)

// Artifact names written by Writer.
const (
	JSONName = "report.json"
	HTMLName = "dashboard.html"
)

// Writer saves report artifacts into Dir.
type Writer struct {
	FS  fsutil.FileSystem
	Dir string

	HTML bool // also write the chart page
	PNG  bool // also write the track map image
}

// Write stores the report and any requested renderings, returning the
// paths written in order. Artifact names derived from session IDs are
// sanitized and confined to Dir.
func (w Writer) Write(r Report) ([]string, error) {
	fsys := w.FS
	if fsys == nil {
		fsys = fsutil.OSFileSystem{}
	}
	dir := w.Dir
	if dir == "" {
		dir = "."
	}
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var written []string
	save := func(name string, render func(*bytes.Buffer) error) error {
		path, err := security.ArtifactPath(dir, name)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return fmt.Errorf("render %s: %w", name, err)
		}
		if err := fsys.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		monitoring.Opsf("wrote %s (%d bytes)", path, buf.Len())
		written = append(written, path)
		return nil
	}

	if err := save(JSONName, func(b *bytes.Buffer) error { return WriteJSON(b, r) }); err != nil {
		return written, err
	}
	if w.HTML {
		if err := save(HTMLName, func(b *bytes.Buffer) error { return RenderDashboardHTML(b, r) }); err != nil {
			return written, err
		}
	}
	if w.PNG {
		if r.TrackMap == nil || len(r.TrackMap.Polyline.Points) == 0 {
			monitoring.Opsf("no track map to render in %s", filepath.Clean(dir))
			return written, nil
		}
		if err := save(TrackMapName(*r.TrackMap), func(b *bytes.Buffer) error { return RenderTrackMapPNG(b, *r.TrackMap) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

// TrackMapName is the PNG file name for tm.
func TrackMapName(tm TrackMap) string {
	return fmt.Sprintf("trackmap-%s-lap%d.png", tm.SessionID, tm.LapNumber)
}
