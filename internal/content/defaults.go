package content

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Section is a titled blurb of static page copy.
type Section struct {
	Title string `yaml:"title"`
	Desc  string `yaml:"desc"`
}

// Package is one rate-card entry on the process page.
type Package struct {
	Name     string   `yaml:"name"`
	Features []string `yaml:"features"`
	Popular  bool     `yaml:"popular"`
}

// Site holds the local fallback content and the static page copy.
type Site struct {
	Brand     string
	Tagline   string
	Projects  []Project
	Reviews   []Review
	Socials   SocialLinks
	Expertise []Section
	Phases    []Section
	Packages  []Package
}

type siteDoc struct {
	Brand    string `yaml:"brand"`
	Tagline  string `yaml:"tagline"`
	Projects []struct {
		ID          string        `yaml:"id"`
		Title       string        `yaml:"title"`
		Category    string        `yaml:"category"`
		Description string        `yaml:"description"`
		Images      []string      `yaml:"images"`
		Featured    bool          `yaml:"featured"`
		Age         time.Duration `yaml:"age"`
	} `yaml:"projects"`
	Reviews []struct {
		ID         string `yaml:"id"`
		ClientName string `yaml:"clientName"`
		Content    string `yaml:"content"`
		Rating     int    `yaml:"rating"`
	} `yaml:"reviews"`
	Socials   SocialLinks `yaml:"socials"`
	Expertise []Section   `yaml:"expertise"`
	Phases    []Section   `yaml:"phases"`
	Packages  []Package   `yaml:"packages"`
}

// Defaults parses the embedded site document. Sample timestamps are
// relative to now, newest first.
func Defaults(now time.Time) (*Site, error) {
	return ParseSite(defaultsYAML, now)
}

// MustDefaults is Defaults for process start, where the embedded document
// is known to be valid.
func MustDefaults(now time.Time) *Site {
	s, err := Defaults(now)
	if err != nil {
		panic(err)
	}
	return s
}

func ParseSite(raw []byte, now time.Time) (*Site, error) {
	var doc siteDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse site defaults: %w", err)
	}

	site := &Site{
		Brand:     doc.Brand,
		Tagline:   doc.Tagline,
		Socials:   doc.Socials,
		Expertise: doc.Expertise,
		Phases:    doc.Phases,
		Packages:  doc.Packages,
	}

	for _, p := range doc.Projects {
		site.Projects = append(site.Projects, Project{
			ID:          p.ID,
			Title:       p.Title,
			Category:    p.Category,
			Description: p.Description,
			Images:      p.Images,
			IsFeatured:  p.Featured,
			DateCreated: now.Add(-p.Age).UnixMilli(),
		})
	}
	for _, r := range doc.Reviews {
		site.Reviews = append(site.Reviews, Review{
			ID:         r.ID,
			ClientName: r.ClientName,
			Content:    r.Content,
			Rating:     r.Rating,
			Date:       now.UnixMilli(),
			Status:     ReviewApproved,
		})
	}

	return site, nil
}
