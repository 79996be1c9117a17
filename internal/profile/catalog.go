package profile

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/blackboxsec/blackbox/internal/domain/model"
)

// Profile describes one audit/tethering environment: which network interfaces
// to bring up or down and which tethering uplink to use while it is active.
type Profile struct {
	Name           string     `yaml:"-"`
	Description    string     `yaml:"description"`
	InternetVia    string     `yaml:"internet_via"`
	Interfaces     Interfaces `yaml:"interfaces"`
	ModulesEnabled []string   `yaml:"modules_enabled"`
}

// Interfaces lists the interfaces toggled when a profile activates.
// Disable runs before enable.
type Interfaces struct {
	Enable  []string `yaml:"enable"`
	Disable []string `yaml:"disable"`
}

// Catalog is the set of named profiles loaded from the YAML catalog file.
type Catalog struct {
	profiles map[string]Profile
}

type catalogFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// LoadCatalog reads and parses the profile catalog at path.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog parses YAML catalog content.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse profile catalog: %w", err)
	}

	profiles := make(map[string]Profile, len(file.Profiles))
	for name, p := range file.Profiles {
		p.Name = name
		profiles[name] = p
	}
	return &Catalog{profiles: profiles}, nil
}

// Get returns the named profile.
func (c *Catalog) Get(name string) (Profile, bool) {
	p, ok := c.profiles[name]
	return p, ok
}

// Names returns all profile names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.profiles))
	for name := range c.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of profiles in the catalog.
func (c *Catalog) Len() int {
	return len(c.profiles)
}

// Profile names used by the job-type map. The catalog file is expected to
// define them.
const (
	ProfileWifiAudit       = "wifi_audit"
	ProfileBluetoothAudit  = "bluetooth_audit"
	ProfileStealthRecon    = "stealth_recon"
	ProfileAggressiveRecon = "aggressive_recon"
)

// profileForJobType maps each job type to the profile that must be active
// before a job of that type runs. An empty value means the type needs no
// particular profile. Hash lookups only call remote services, so they run
// under whatever profile is current.
var profileForJobType = map[model.JobType]string{
	model.JobTypeWifiRecon:  ProfileWifiAudit,
	model.JobTypeWifiActive: ProfileWifiAudit,
	model.JobTypeBTRecon:    ProfileBluetoothAudit,
	model.JobTypeBTActive:   ProfileBluetoothAudit,
	model.JobTypeHashLookup: "",

	// Web/LAN types have no handlers yet; the map is ready for them.
	"web_recon":  ProfileStealthRecon,
	"web_attack": ProfileAggressiveRecon,
	"lan_recon":  ProfileStealthRecon,
	"lan_attack": ProfileAggressiveRecon,
}

// ForJobType returns the profile required for a job type, or "" when the
// type needs no profile switch. Unknown types need no switch either; they
// fail later at handler resolution.
func ForJobType(jobType model.JobType) string {
	return profileForJobType[jobType]
}
