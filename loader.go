package stbridge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// schemaFetcher fetches the raw schema source bytes for one version,
// returning the location that succeeded.
type schemaFetcher interface {
	Fetch(ctx context.Context, version SchemaVersion) ([]byte, string, error)
}

// sourceFilenames lists the candidate schema source files per version,
// tried in order. XSD sources are preferred; a deployment that only
// ships the JSON format still loads.
var sourceFilenames = map[SchemaVersion][]string{
	Version202: {"STB202.xsd", "ST-Bridge202.xsd", "stb-2.0.2.schema.json"},
	Version210: {"STB210.xsd", "ST-Bridge210.xsd", "stb-2.1.0.schema.json"},
}

// SourceLoader resolves schema sources from local search directories and
// optional extra locations (paths or http URLs, when AllowRemote is on).
type SourceLoader struct {
	SearchDirs  []string
	Locations   map[SchemaVersion][]string
	AllowRemote bool

	client *http.Client
	log    *zap.Logger
}

// NewSourceLoader returns a loader over the given search directories.
// A nil logger disables logging.
func NewSourceLoader(searchDirs []string, log *zap.Logger) *SourceLoader {
	if log == nil {
		log = zap.NewNop()
	}
	return &SourceLoader{
		SearchDirs: searchDirs,
		Locations:  make(map[SchemaVersion][]string),
		client:     &http.Client{},
		log:        log,
	}
}

// AddLocation registers an extra candidate location for a version,
// tried before the default filenames.
func (l *SourceLoader) AddLocation(version SchemaVersion, location string) {
	l.Locations[version] = append(l.Locations[version], location)
}

// Fetch tries each candidate location in order until one yields bytes.
func (l *SourceLoader) Fetch(ctx context.Context, version SchemaVersion) ([]byte, string, error) {
	candidates := l.candidates(version)
	if len(candidates) == 0 {
		return nil, "", fmt.Errorf("no schema source candidates for version %s", version)
	}

	var lastErr error
	for _, loc := range candidates {
		data, err := l.fetchOne(ctx, loc)
		if err != nil {
			l.log.Debug("schema source candidate failed",
				zap.String("version", string(version)),
				zap.String("location", loc),
				zap.Error(err))
			lastErr = err
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			continue
		}
		l.log.Debug("schema source resolved",
			zap.String("version", string(version)),
			zap.String("location", loc),
			zap.Int("bytes", len(data)))
		return data, loc, nil
	}
	return nil, "", fmt.Errorf("no schema source found for version %s: %w", version, lastErr)
}

func (l *SourceLoader) candidates(version SchemaVersion) []string {
	var out []string
	out = append(out, l.Locations[version]...)
	for _, name := range sourceFilenames[version] {
		if len(l.SearchDirs) == 0 {
			out = append(out, name)
			continue
		}
		for _, dir := range l.SearchDirs {
			out = append(out, filepath.Join(dir, name))
		}
	}
	return out
}

func (l *SourceLoader) fetchOne(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		if !l.AllowRemote {
			return nil, fmt.Errorf("remote schema loading disabled: %s", location)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d fetching %s", resp.StatusCode, location)
		}
		return io.ReadAll(resp.Body)
	}
	return os.ReadFile(location)
}
