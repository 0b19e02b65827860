// Package sink delivers a run's partitions to their destination.
package sink

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bjaus/routesplit"
)

// ErrInvalidSessionName is returned for a session ID that cannot be used as
// a file name or subject token.
var ErrInvalidSessionName = errors.New("invalid session name")

// Manifest is the audit record of a run: which group went to which session
// and what each session received.
type Manifest struct {
	Sessions []ManifestSession        `yaml:"sessions"`
	Groups   []ManifestGroup          `yaml:"groups"`
	Stats    routesplit.StatsSnapshot `yaml:"stats"`
	Meta     map[string]any           `yaml:"meta,omitempty"`
}

// ManifestSession is one session's totals.
type ManifestSession struct {
	ID      string `yaml:"id"`
	Groups  int    `yaml:"groups"`
	Records int    `yaml:"records"`
}

// ManifestGroup is one placed group, in placement order.
type ManifestGroup struct {
	Origin  string `yaml:"origin"`
	Route   string `yaml:"route"`
	Count   int    `yaml:"count"`
	Session string `yaml:"session"`
}

// NewManifest summarizes res.
func NewManifest(res *routesplit.Result, meta map[string]any) Manifest {
	m := Manifest{Meta: meta}
	for _, l := range res.Assignment.Loads() {
		m.Sessions = append(m.Sessions, ManifestSession{ID: string(l.Session), Groups: l.Groups, Records: l.Records})
	}
	for _, g := range res.Assignment.Groups {
		m.Groups = append(m.Groups, ManifestGroup{
			Origin:  g.Group.Key.Origin,
			Route:   g.Group.Key.Route,
			Count:   g.Group.Count,
			Session: string(g.Session),
		})
	}
	if res.Stats != nil {
		m.Stats = res.Stats.Snapshot()
	}
	return m
}

// Marshal renders the manifest as YAML.
func (m Manifest) Marshal() ([]byte, error) {
	return yaml.Marshal(m)
}

// checkSessionName rejects IDs that would escape a directory or span
// several subject tokens.
func checkSessionName(id routesplit.SessionID) error {
	s := string(id)
	if s == "" || strings.ContainsAny(s, "/\\.*> \t\r\n") {
		return fmt.Errorf("%w: %q", ErrInvalidSessionName, s)
	}
	return nil
}
