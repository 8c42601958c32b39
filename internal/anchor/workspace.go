package anchor

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/aarondl/strmangle"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/iao-solana/internal/config"
)

var (
	builtinMu   sync.RWMutex
	builtinIDLs = map[string]*IDL{}
)

// RegisterIDL makes an IDL available to every workspace, e.g. a descriptor
// embedded into the binary. Files in target/idl take precedence.
func RegisterIDL(raw []byte) (*IDL, error) {
	idl, err := ParseIDL(raw)
	if err != nil {
		return nil, err
	}

	builtinMu.Lock()
	defer builtinMu.Unlock()

	builtinIDLs[idl.ProgramName()] = idl

	return idl, nil
}

// Workspace mirrors `anchor.workspace`: programs of an Anchor project looked
// up by their PascalCase name.
type Workspace struct {
	dir      string
	manifest *config.AnchorToml
	idls     map[string]*IDL
}

// LoadWorkspace reads Anchor.toml (optional) and target/idl/*.json in dir.
func LoadWorkspace(dir string) (*Workspace, error) {
	w := &Workspace{
		dir:  dir,
		idls: make(map[string]*IDL),
	}

	manifest, err := config.LoadAnchorToml(dir)
	switch {
	case err == nil:
		w.manifest = manifest
	case errors.Is(err, os.ErrNotExist):
		log.Debug().Str("dir", dir).Msg("No Anchor.toml in workspace, relying on IDL addresses")
	default:
		return nil, err
	}

	paths, err := filepath.Glob(filepath.Join(dir, "target", "idl", "*.json"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list IDL files")
	}

	for _, path := range paths {
		idl, err := LoadIDLFile(path)
		if err != nil {
			return nil, err
		}
		w.idls[idl.ProgramName()] = idl
	}

	return w, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Manifest returns the parsed Anchor.toml or nil.
func (w *Workspace) Manifest() *config.AnchorToml {
	return w.manifest
}

// Names lists the PascalCase names of all known programs.
func (w *Workspace) Names() []string {
	seen := map[string]struct{}{}
	for name := range w.idls {
		seen[workspaceName(name)] = struct{}{}
	}

	builtinMu.RLock()
	for name := range builtinIDLs {
		seen[workspaceName(name)] = struct{}{}
	}
	builtinMu.RUnlock()

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

type programOptions struct {
	programID *solana.PublicKey
	cluster   string
}

type ProgramOption func(*programOptions)

// WithProgramID overrides the address from Anchor.toml and the IDL.
func WithProgramID(id solana.PublicKey) ProgramOption {
	return func(o *programOptions) {
		o.programID = &id
	}
}

// WithCluster selects the [programs.<cluster>] table of Anchor.toml. An
// empty cluster keeps the provider cluster of Anchor.toml.
func WithCluster(cluster string) ProgramOption {
	return func(o *programOptions) {
		if cluster != "" {
			o.cluster = cluster
		}
	}
}

// Program resolves the program handle by workspace name ("IaoSolana" or
// "iao_solana").
func (w *Workspace) Program(name string, provider *Provider, opts ...ProgramOption) (*Program, error) {
	o := programOptions{}
	if w.manifest != nil {
		o.cluster = w.manifest.Provider.Cluster
	}
	for _, opt := range opts {
		opt(&o)
	}

	idl, ok := w.lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrProgramNotFound, "%s (known: %s)", name, strings.Join(w.Names(), ", "))
	}

	id, err := w.programID(idl, o)
	if err != nil {
		return nil, err
	}

	return NewProgram(idl, id, provider), nil
}

func (w *Workspace) programID(idl *IDL, o programOptions) (solana.PublicKey, error) {
	if o.programID != nil {
		return *o.programID, nil
	}

	if w.manifest != nil {
		if addr, ok := w.manifest.ProgramAddress(o.cluster, idl.ProgramName()); ok {
			id, err := solana.PublicKeyFromBase58(addr)
			if err != nil {
				return solana.PublicKey{}, errors.Wrapf(err, "invalid address for %s in %s", idl.ProgramName(), config.AnchorTomlFile)
			}
			return id, nil
		}
	}

	if id, ok := idl.ProgramAddress(); ok {
		return id, nil
	}

	return solana.PublicKey{}, errors.Errorf("no address known for program %s", idl.ProgramName())
}

func (w *Workspace) lookup(name string) (*IDL, bool) {
	if idl, ok := matchIDL(w.idls, name); ok {
		return idl, true
	}

	builtinMu.RLock()
	defer builtinMu.RUnlock()

	return matchIDL(builtinIDLs, name)
}

func matchIDL(idls map[string]*IDL, name string) (*IDL, bool) {
	for programName, idl := range idls {
		if programName == name || workspaceName(programName) == name || normalizeName(programName) == normalizeName(name) {
			return idl, true
		}
	}

	return nil, false
}

// workspaceName turns "iao_solana" into "IaoSolana".
func workspaceName(programName string) string {
	return strmangle.TitleCase(programName)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, "_", ""), "-", ""))
}
