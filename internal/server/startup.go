package server

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ecconia/logicworldd/internal/extradata"
	"github.com/ecconia/logicworldd/internal/succ"
	"github.com/ecconia/logicworldd/internal/world"
)

// worldSaveFile and extraDataDir name the fixed on-disk layout under the
// configured data directory.
const (
	worldSaveFile = "World/data.logicworld"
	extraDataDir  = "World/ExtraData"
)

// LoadWorld reads and parses the world save file under dataDir. A missing
// save file is not an error: it yields the zero World, which the dispatcher
// answers with the empty-world placeholder snapshot.
func LoadWorld(dataDir string) (world.World, error) {
	path := filepath.Join(dataDir, worldSaveFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return world.World{}, nil
	}
	if err != nil {
		return world.World{}, fmt.Errorf("server: read world save: %w", err)
	}
	w, err := world.ParseSave(data)
	if err != nil {
		return world.World{}, fmt.Errorf("server: parse world save %s: %w", path, err)
	}
	return w, nil
}

// LoadExtraData scans dataDir/World/ExtraData for *.succ files and primes a
// new Manager from them. Each file's key is derived from its path relative
// to the ExtraData root, with the .succ extension stripped and path
// separators normalized to the protocol's forward-slash key format. Entries
// whose kind doesn't support SUCC loading (most of them — see
// extradata.errLoadUnsupported) are logged and skipped rather than failing
// the whole scan, since the directory in practice only ever contains
// FlagListOrder and world-type-data files.
func LoadExtraData(log zerolog.Logger, dataDir string) (*extradata.Manager, error) {
	m := extradata.NewManager(log)

	root := filepath.Join(dataDir, extraDataDir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return nil
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".succ") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), ".succ")

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		tree, err := succ.Parse(data)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping malformed extra data file")
			return nil
		}
		if err := m.LoadFromSUCC(key, tree); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("skipping extra data file this entry kind can't load from disk")
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("server: scan extra data directory: %w", err)
	}
	return m, nil
}
