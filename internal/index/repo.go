package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// SearchResult represents one search hit.
type SearchResult struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// GraphNode is a module in the tag graph.
type GraphNode struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Kapitel string   `json:"kapitel"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
}

// GraphLink connects two modules that share at least one tag.
// Weight is the number of shared tags.
type GraphLink struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Weight int      `json:"weight"`
	Tags   []string `json:"tags"`
}

// Graph is the module tag graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// IndexModule inserts or replaces a module, its FTS entry and its tags within a transaction.
func (db *DB) IndexModule(m models.Module, checksum string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tags := uniqueTags(m.Tags)
	tagsJSON, _ := json.Marshal(tags)

	_, err = tx.Exec(`
		INSERT INTO modules (slug, title, kapitel, unterkapitel, status, checksum, tags, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title        = excluded.title,
			kapitel      = excluded.kapitel,
			unterkapitel = excluded.unterkapitel,
			status       = excluded.status,
			checksum     = excluded.checksum,
			tags         = excluded.tags,
			body         = excluded.body,
			updated_at   = excluded.updated_at
	`, m.Slug, m.Title, m.Kapitel, m.Unterkapitel, m.Status, checksum, string(tagsJSON), m.Content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("index: upsert module: %w", err)
	}

	if err := ftsUpsert(tx, m.Slug, m.Title, m.Content, tags); err != nil {
		return err
	}

	if _, err := tx.Exec(`DELETE FROM module_tags WHERE slug = ?`, m.Slug); err != nil {
		return fmt.Errorf("index: clear tags: %w", err)
	}
	if len(tags) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO module_tags (slug, tag) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare tag insert: %w", err)
		}
		defer stmt.Close()
		for _, tag := range tags {
			if _, err := stmt.Exec(m.Slug, tag); err != nil {
				return fmt.Errorf("index: insert tag: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteModule removes a module, its FTS entry and its tags.
func (db *DB) DeleteModule(slug string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := ftsDelete(tx, slug); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM module_tags WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete tags: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM modules WHERE slug = ?`, slug); err != nil {
		return fmt.Errorf("index: delete module: %w", err)
	}
	return tx.Commit()
}

// GetChecksum returns the stored checksum for a module, or "" if it is not indexed.
func (db *DB) GetChecksum(slug string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM modules WHERE slug = ?`, slug).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns slug → checksum for every indexed module.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT slug, checksum FROM modules`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var slug, cs string
		if err := rows.Scan(&slug, &cs); err != nil {
			return nil, err
		}
		out[slug] = cs
	}
	return out, rows.Err()
}

// Graph returns every module as a node and one link per pair of modules that
// share tags.
func (db *DB) Graph() (*Graph, error) {
	rows, err := db.conn.Query(`SELECT slug, title, kapitel, status, tags FROM modules ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()

	g := &Graph{Nodes: []GraphNode{}, Links: []GraphLink{}}
	for rows.Next() {
		var n GraphNode
		var tagsJSON string
		if err := rows.Scan(&n.ID, &n.Title, &n.Kapitel, &n.Status, &tagsJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil || n.Tags == nil {
			n.Tags = []string{}
		}
		g.Nodes = append(g.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	linkRows, err := db.conn.Query(`
		SELECT a.slug, b.slug, a.tag
		FROM module_tags a
		JOIN module_tags b ON a.tag = b.tag AND a.slug < b.slug
		ORDER BY a.slug, b.slug, a.tag
	`)
	if err != nil {
		return nil, fmt.Errorf("index: graph links: %w", err)
	}
	defer linkRows.Close()

	byPair := make(map[[2]string]*GraphLink)
	var order [][2]string
	for linkRows.Next() {
		var src, dst, tag string
		if err := linkRows.Scan(&src, &dst, &tag); err != nil {
			return nil, err
		}
		key := [2]string{src, dst}
		l, ok := byPair[key]
		if !ok {
			l = &GraphLink{Source: src, Target: dst}
			byPair[key] = l
			order = append(order, key)
		}
		l.Weight++
		l.Tags = append(l.Tags, tag)
	}
	if err := linkRows.Err(); err != nil {
		return nil, err
	}
	for _, key := range order {
		g.Links = append(g.Links, *byPair[key])
	}
	return g, nil
}

func uniqueTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
