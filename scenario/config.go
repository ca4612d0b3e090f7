// -*- tab-width:2 -*-

// Package scenario reads a topology and a list of traffic phases from
// YAML or JSON, builds the simulation and runs it.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	netlat "github.com/jayalane/go-netlat"
	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownFormat is returned for files that are neither YAML nor JSON.
	ErrUnknownFormat = errors.New("unknown scenario format")
	// ErrInvalidConfig is wrapped around every validation failure.
	ErrInvalidConfig = errors.New("invalid scenario")
)

// Format is a serialization picked by file extension.
type Format string

// Supported formats.
const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatFromPath maps .yaml, .yml and .json, in any case, to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Location is a named point on the globe in degrees.
type Location struct {
	Name      string  `yaml:"name" json:"name"`
	Latitude  float64 `yaml:"latitude" json:"latitude"`
	Longitude float64 `yaml:"longitude" json:"longitude"`
}

func (l Location) coordinate() netlat.Coordinate {
	return netlat.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude, Name: l.Name}
}

// ServerConfig describes a forwarding node. ProcessingDelay is seconds.
type ServerConfig struct {
	ID              int      `yaml:"id" json:"id"`
	Location        Location `yaml:"location" json:"location"`
	ProcessingDelay float64  `yaml:"processing_delay" json:"processing_delay"`
	Bandwidth       float64  `yaml:"bandwidth" json:"bandwidth"`
}

// ClientConfig describes an endpoint.
type ClientConfig struct {
	ID       int      `yaml:"id" json:"id"`
	Location Location `yaml:"location" json:"location"`
}

// LinkConfig is a directed link; Bidirectional adds the reverse too.
type LinkConfig struct {
	From          int     `yaml:"from" json:"from"`
	To            int     `yaml:"to" json:"to"`
	Bandwidth     float64 `yaml:"bandwidth" json:"bandwidth"`
	Medium        string  `yaml:"medium,omitempty" json:"medium,omitempty"`
	Bidirectional bool    `yaml:"bidirectional,omitempty" json:"bidirectional,omitempty"`
}

// Injection sends Count packets (at least one) at the phase start.
type Injection struct {
	From     int    `yaml:"from" json:"from"`
	To       int    `yaml:"to" json:"to"`
	Size     int    `yaml:"size" json:"size"`
	Protocol string `yaml:"protocol,omitempty" json:"protocol,omitempty"`
	Count    int    `yaml:"count,omitempty" json:"count,omitempty"`
}

// SizeConfig picks a packet size distribution. Kind is one of fixed,
// uniform, normal, lognormal or pareto and selects which fields apply.
type SizeConfig struct {
	Kind  string  `yaml:"kind" json:"kind"`
	Size  int     `yaml:"size,omitempty" json:"size,omitempty"`
	Min   float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max   float64 `yaml:"max,omitempty" json:"max,omitempty"`
	Mu    float64 `yaml:"mu,omitempty" json:"mu,omitempty"`
	Sigma float64 `yaml:"sigma,omitempty" json:"sigma,omitempty"`
	Xm    float64 `yaml:"xm,omitempty" json:"xm,omitempty"`
	Alpha float64 `yaml:"alpha,omitempty" json:"alpha,omitempty"`
}

// Quantile builds the size distribution; a nil receiver means the
// sources' default.
func (c *SizeConfig) Quantile() (netlat.SizeQuantile, error) {
	if c == nil {
		return nil, nil
	}

	switch strings.ToLower(c.Kind) {
	case "", "fixed":
		if c.Size < 0 || c.Size > netlat.MaxPacketSize {
			return nil, fmt.Errorf("%w: fixed size %d", ErrInvalidConfig, c.Size)
		}

		return netlat.FixedSize(c.Size), nil
	case "uniform":
		if !finite(c.Min, c.Max) || c.Min < 0 || c.Max < c.Min || c.Max > netlat.MaxPacketSize {
			return nil, fmt.Errorf("%w: uniform sizes need 0 <= min <= max, got [%v, %v]", ErrInvalidConfig, c.Min, c.Max)
		}

		return netlat.UniformSizes(c.Min, c.Max), nil
	case "normal", "lognormal":
		if !finite(c.Mu, c.Sigma) || c.Sigma <= 0 {
			return nil, fmt.Errorf("%w: %s sizes need a positive sigma, got mu %v sigma %v", ErrInvalidConfig, c.Kind, c.Mu, c.Sigma)
		}

		if strings.EqualFold(c.Kind, "normal") {
			return netlat.NormalSizes(c.Mu, c.Sigma), nil
		}

		return netlat.LogNormalSizes(c.Mu, c.Sigma), nil
	case "pareto":
		if !finite(c.Xm, c.Alpha) || c.Xm <= 0 || c.Alpha <= 0 {
			return nil, fmt.Errorf("%w: pareto sizes need positive xm and alpha, got %v and %v", ErrInvalidConfig, c.Xm, c.Alpha)
		}

		return netlat.ParetoSizes(c.Xm, c.Alpha), nil
	default:
		return nil, fmt.Errorf("%w: size kind %q", ErrInvalidConfig, c.Kind)
	}
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// SourceConfig is a Poisson traffic source that runs from the phase
// start to its horizon.
type SourceConfig struct {
	Name     string      `yaml:"name" json:"name"`
	From     int         `yaml:"from" json:"from"`
	To       int         `yaml:"to" json:"to"`
	Rate     float64     `yaml:"rate" json:"rate"`
	Protocol string      `yaml:"protocol,omitempty" json:"protocol,omitempty"`
	Seed     uint64      `yaml:"seed,omitempty" json:"seed,omitempty"`
	Sizes    *SizeConfig `yaml:"sizes,omitempty" json:"sizes,omitempty"`
}

// Phase injects its traffic at the current time and then runs to
// Horizon, in absolute seconds.
type Phase struct {
	Name       string         `yaml:"name" json:"name"`
	Horizon    float64        `yaml:"horizon" json:"horizon"`
	Injections []Injection    `yaml:"injections,omitempty" json:"injections,omitempty"`
	Sources    []SourceConfig `yaml:"sources,omitempty" json:"sources,omitempty"`
}

// Config is a whole scenario file.
type Config struct {
	Name    string         `yaml:"name" json:"name"`
	Servers []ServerConfig `yaml:"servers" json:"servers"`
	Clients []ClientConfig `yaml:"clients" json:"clients"`
	Links   []LinkConfig   `yaml:"links" json:"links"`
	Phases  []Phase        `yaml:"phases" json:"phases"`
}

// Load reads a scenario file, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario %s: %w", path, err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	return cfg, nil
}

// Parse decodes a scenario and validates it.
func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config

	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	case JSON:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks what the simulation itself would panic on or
// silently accept: reused ids, non-positive bandwidth, bad names and
// phases that go back in time.
func (c *Config) Validate() error {
	ids := make(map[int]bool, len(c.Servers)+len(c.Clients))

	for _, s := range c.Servers {
		if ids[s.ID] {
			return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, netlat.ErrDuplicateNode, s.ID)
		}

		if s.ProcessingDelay < 0 {
			return fmt.Errorf("%w: server %d has negative processing_delay", ErrInvalidConfig, s.ID)
		}

		ids[s.ID] = true
	}

	for _, cl := range c.Clients {
		if ids[cl.ID] {
			return fmt.Errorf("%w: %w: %d", ErrInvalidConfig, netlat.ErrDuplicateNode, cl.ID)
		}

		ids[cl.ID] = true
	}

	for i, l := range c.Links {
		if !(l.Bandwidth > 0) {
			return fmt.Errorf("%w: link %d (%d->%d) needs a positive bandwidth", ErrInvalidConfig, i, l.From, l.To)
		}

		if _, err := netlat.ParseMedium(l.Medium); err != nil {
			return fmt.Errorf("%w: link %d: %w", ErrInvalidConfig, i, err)
		}
	}

	last := 0.0

	for _, p := range c.Phases {
		if p.Horizon < last {
			return fmt.Errorf("%w: phase %q horizon %v is before %v", ErrInvalidConfig, p.Name, p.Horizon, last)
		}

		last = p.Horizon

		if err := p.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (p *Phase) validate() error {
	for _, inj := range p.Injections {
		if _, err := netlat.ParseProtocol(inj.Protocol); err != nil {
			return fmt.Errorf("%w: phase %q: %w", ErrInvalidConfig, p.Name, err)
		}

		if inj.Count < 0 || inj.Size < 0 {
			return fmt.Errorf("%w: phase %q: negative count or size", ErrInvalidConfig, p.Name)
		}
	}

	for _, src := range p.Sources {
		if _, err := netlat.ParseProtocol(src.Protocol); err != nil {
			return fmt.Errorf("%w: phase %q source %q: %w", ErrInvalidConfig, p.Name, src.Name, err)
		}

		if src.Rate <= 0 {
			return fmt.Errorf("%w: phase %q source %q: %w", ErrInvalidConfig, p.Name, src.Name, netlat.ErrInvalidRate)
		}

		if _, err := src.Sizes.Quantile(); err != nil {
			return fmt.Errorf("phase %q source %q: %w", p.Name, src.Name, err)
		}
	}

	return nil
}

// Build creates the simulation with every node and link of c. Links
// are added in file order, which decides routing ties.
func Build(c *Config) (*netlat.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s := netlat.NewSimulation(c.Name)

	for _, srv := range c.Servers {
		s.AddServer(netlat.Server{
			ID:              netlat.NodeID(srv.ID),
			Location:        srv.Location.coordinate(),
			ProcessingDelay: netlat.Seconds(srv.ProcessingDelay),
			Bandwidth:       srv.Bandwidth,
		})
	}

	for _, cl := range c.Clients {
		s.AddClient(netlat.Client{ID: netlat.NodeID(cl.ID), Location: cl.Location.coordinate()})
	}

	for _, l := range c.Links {
		medium, _ := netlat.ParseMedium(l.Medium)

		if _, err := s.ConnectMedium(netlat.NodeID(l.From), netlat.NodeID(l.To), l.Bandwidth, medium); err != nil {
			return nil, fmt.Errorf("link %d->%d: %w", l.From, l.To, err)
		}

		if !l.Bidirectional {
			continue
		}

		if _, err := s.ConnectMedium(netlat.NodeID(l.To), netlat.NodeID(l.From), l.Bandwidth, medium); err != nil {
			return nil, fmt.Errorf("link %d->%d: %w", l.To, l.From, err)
		}
	}

	return s, nil
}
