package database

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

//go:embed seeddata/sections.yaml
var defaultSeedFile []byte

// SeedOptions controls what Seed inserts.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	// SectionsFile overrides the embedded default seed file when set.
	SectionsFile string
}

// SeedFile is the YAML document describing default settings and sections.
type SeedFile struct {
	Settings map[string]string `yaml:"settings"`
	Sections []SeedSection     `yaml:"sections"`
}

// SeedSection is one website section in the seed file.
type SeedSection struct {
	Page     string         `yaml:"page"`
	Key      string         `yaml:"key"`
	Order    int            `yaml:"order"`
	Title    string         `yaml:"title"`
	Subtitle string         `yaml:"subtitle"`
	Hidden   bool           `yaml:"hidden"`
	Content  map[string]any `yaml:"content"`
}

// ParseSeedFile decodes a seed document. Sections without a page default to "home".
func ParseSeedFile(data []byte) (*SeedFile, error) {
	var f SeedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	for i := range f.Sections {
		if f.Sections[i].Key == "" {
			return nil, fmt.Errorf("parse seed file: section %d has no key", i)
		}
		if f.Sections[i].Page == "" {
			f.Sections[i].Page = "home"
		}
	}
	return &f, nil
}

// Seed populates the database with initial data. It creates the admin
// user if no users exist, and inserts settings and sections that are not
// already present. Existing rows are never modified, so Seed is safe to run
// on every boot.
func Seed(db *sql.DB, opts SeedOptions) error {
	if err := seedAdmin(db, opts.AdminEmail, opts.AdminPassword); err != nil {
		return err
	}

	data := defaultSeedFile
	if opts.SectionsFile != "" {
		b, err := os.ReadFile(opts.SectionsFile)
		if err != nil {
			return fmt.Errorf("seed read %s: %w", opts.SectionsFile, err)
		}
		data = b
	}
	f, err := ParseSeedFile(data)
	if err != nil {
		return err
	}

	for k, v := range f.Settings {
		if _, err := db.Exec(`
			INSERT INTO site_settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING
		`, k, v); err != nil {
			return fmt.Errorf("seed setting %s: %w", k, err)
		}
	}

	var inserted int
	for _, s := range f.Sections {
		content := s.Content
		if content == nil {
			content = map[string]any{}
		}
		raw, err := json.Marshal(content)
		if err != nil {
			return fmt.Errorf("seed section %s: %w", s.Key, err)
		}
		res, err := db.Exec(`
			INSERT INTO website_sections (page, section_key, title, subtitle, content, is_visible, order_index)
			VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)
			ON CONFLICT (page, section_key) DO NOTHING
		`, s.Page, s.Key, s.Title, s.Subtitle, string(raw), !s.Hidden, s.Order)
		if err != nil {
			return fmt.Errorf("seed section %s: %w", s.Key, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	slog.Info("database seed applied", "settings", len(f.Settings), "sections_inserted", inserted)
	return nil
}

// seedAdmin creates the first administrator when the users table is empty.
func seedAdmin(db *sql.DB, email, password string) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}
	if count > 0 {
		return nil
	}
	if email == "" || password == "" {
		return fmt.Errorf("seed admin: email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role)
		VALUES ($1, $2, $3, $4)
	`, email, string(hash), "Administrator", "admin")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "email", email)
	return nil
}
