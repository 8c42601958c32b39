package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const AnchorTomlFile = "Anchor.toml"

var ErrUnknownCluster = errors.New("unknown cluster")

// AnchorToml is the subset of an Anchor workspace manifest the client needs.
type AnchorToml struct {
	Provider struct {
		Cluster string `toml:"cluster"`
		Wallet  string `toml:"wallet"`
	} `toml:"provider"`
	// Programs maps cluster -> program name -> address. Entries may also be
	// tables of the form { address = "...", idl = "..." }.
	Programs map[string]map[string]any `toml:"programs"`
	Scripts  map[string]string         `toml:"scripts"`
}

// LoadAnchorToml reads Anchor.toml from dir.
func LoadAnchorToml(dir string) (*AnchorToml, error) {
	path := filepath.Join(dir, AnchorTomlFile)

	var manifest AnchorToml
	if _, err := toml.DecodeFile(path, &manifest); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "%s not found in %s", AnchorTomlFile, dir)
		}
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}

	return &manifest, nil
}

// ProgramAddress returns the address configured for program name on cluster.
func (a *AnchorToml) ProgramAddress(cluster string, name string) (string, bool) {
	programs, ok := a.Programs[strings.ToLower(cluster)]
	if !ok {
		return "", false
	}

	switch entry := programs[name].(type) {
	case string:
		return entry, entry != ""
	case map[string]any:
		addr, ok := entry["address"].(string)
		return addr, ok && addr != ""
	default:
		return "", false
	}
}

// WalletPath returns the provider wallet with a leading "~" expanded.
func (a *AnchorToml) WalletPath() string {
	return ExpandHome(a.Provider.Wallet)
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[2:])
}

// ClusterURL resolves a cluster moniker ("localnet", "devnet", ...) or passes
// through a URL unchanged.
func ClusterURL(cluster string) (string, error) {
	if strings.HasPrefix(cluster, "http://") || strings.HasPrefix(cluster, "https://") {
		return cluster, nil
	}

	switch strings.ToLower(cluster) {
	case "localnet", "localhost", "":
		return "http://127.0.0.1:8899", nil
	case "devnet":
		return "https://api.devnet.solana.com", nil
	case "testnet":
		return "https://api.testnet.solana.com", nil
	case "mainnet", "mainnet-beta":
		return "https://api.mainnet-beta.solana.com", nil
	default:
		return "", errors.Wrapf(ErrUnknownCluster, "cluster %q", cluster)
	}
}

// ClusterName maps a URL back to its moniker; unknown URLs are "localnet"
// when they point to the loopback interface and "custom" otherwise.
func ClusterName(url string) string {
	switch {
	case strings.Contains(url, "devnet"):
		return "devnet"
	case strings.Contains(url, "testnet"):
		return "testnet"
	case strings.Contains(url, "mainnet"):
		return "mainnet"
	case strings.Contains(url, "127.0.0.1"), strings.Contains(url, "localhost"):
		return "localnet"
	default:
		return "custom"
	}
}

// ApplyAnchorToml fills provider and cluster settings that the environment
// left empty from the workspace manifest.
func (s *Server) ApplyAnchorToml(manifest *AnchorToml) error {
	if s.Program.Cluster == "" {
		s.Program.Cluster = strings.ToLower(manifest.Provider.Cluster)
	}

	if s.Provider.URL == "" && manifest.Provider.Cluster != "" {
		url, err := ClusterURL(manifest.Provider.Cluster)
		if err != nil {
			return err
		}
		s.Provider.URL = url
	}

	if s.Provider.WalletPath == "" {
		s.Provider.WalletPath = manifest.WalletPath()
	}

	return nil
}
