// Package corpus loads the static interview question corpus from the
// filesystem and exposes read-only access to it.
package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const planFileName = "plan.yaml"

// Corpus is the loaded, immutable question corpus.
type Corpus struct {
	records map[string]QARecord
	order   []string
	byTopic map[Topic][]string
	answers map[string]*localizedAnswer
	plan    StudyPlan
}

// Load walks rootDir and builds the corpus from record YAML files, JSON
// seed files, the study plan, and localized answer overlays.
func Load(rootDir string) (*Corpus, error) {
	c := &Corpus{
		records: make(map[string]QARecord),
		byTopic: make(map[Topic][]string),
		answers: make(map[string]*localizedAnswer),
	}

	overlays := map[string]map[string]string{} // id -> locale -> markdown

	err := filepath.Walk(rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		switch {
		case filepath.Base(path) == planFileName:
			return c.loadPlan(path)
		case strings.HasSuffix(path, ".seed.json"):
			return c.loadSeed(path)
		case strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml"):
			return c.loadRecord(path)
		case strings.HasSuffix(path, ".md"):
			return collectOverlay(path, overlays)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	if err := c.attachOverlays(overlays); err != nil {
		return nil, err
	}

	slog.Info("corpus loaded", "records", len(c.order), "plan_weeks", c.plan.TotalWeeks())
	return c, nil
}

// Records returns all records in load order.
func (c *Corpus) Records() []QARecord {
	out := make([]QARecord, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.records[id])
	}
	return out
}

// Record returns a record by id.
func (c *Corpus) Record(id string) (QARecord, bool) {
	r, ok := c.records[id]
	return r, ok
}

// ByTopic returns all records with the given topic, in load order.
func (c *Corpus) ByTopic(topic Topic) []QARecord {
	ids := c.byTopic[topic]
	out := make([]QARecord, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.records[id])
	}
	return out
}

// Plan returns the study plan. The zero plan means none was authored.
func (c *Corpus) Plan() StudyPlan {
	return c.plan
}

// AnswerHTML returns the record's answer rendered to HTML, localized to
// the best match for the Accept-Language value.
func (c *Corpus) AnswerHTML(id, acceptLanguage string) (string, bool) {
	a, ok := c.answers[id]
	if !ok {
		return "", false
	}
	return a.match(acceptLanguage), true
}

func (c *Corpus) loadRecord(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var rec QARecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		slog.Warn("skipping invalid record YAML", "path", path, "error", err)
		return nil
	}

	if rec.ID == "" {
		return nil // Not a record file
	}

	return c.add(rec, path)
}

func (c *Corpus) loadPlan(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var plan StudyPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return fmt.Errorf("parse study plan %s: %w", path, err)
	}

	for i, ph := range plan.Phases {
		if ph.Name == "" {
			return fmt.Errorf("study plan %s: phase %d has no name", path, i)
		}
		if ph.DurationWeeks <= 0 {
			return fmt.Errorf("study plan %s: phase %q duration must be positive, got %d", path, ph.Name, ph.DurationWeeks)
		}
		for _, t := range ph.Topics {
			if _, ok := ParseTopic(string(t)); !ok {
				return fmt.Errorf("study plan %s: phase %q references unknown topic %q", path, ph.Name, t)
			}
		}
	}

	c.plan = plan
	return nil
}

func (c *Corpus) add(rec QARecord, path string) error {
	if _, ok := ParseTopic(string(rec.Topic)); !ok {
		return fmt.Errorf("record %q in %s: unknown topic %q", rec.ID, path, rec.Topic)
	}
	if _, dup := c.records[rec.ID]; dup {
		return fmt.Errorf("record %q in %s: duplicate id", rec.ID, path)
	}

	c.records[rec.ID] = rec
	c.order = append(c.order, rec.ID)
	c.byTopic[rec.Topic] = append(c.byTopic[rec.Topic], rec.ID)
	return nil
}

// collectOverlay records a localized answer overlay file named
// <id>.<locale>.md. Markdown files without a parseable locale segment
// are not overlays and are ignored.
func collectOverlay(path string, overlays map[string]map[string]string) error {
	n := strings.TrimSuffix(filepath.Base(path), ".md")

	locale := strings.TrimPrefix(filepath.Ext(n), ".")
	if locale == "" {
		return nil
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil
	}

	id := strings.TrimSuffix(n, filepath.Ext(n))
	if id == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if overlays[id] == nil {
		overlays[id] = map[string]string{}
	}
	overlays[id][tag.String()] = string(data)
	return nil
}

// attachOverlays renders every record's base answer plus its collected
// overlays. Overlays without a matching record are dropped.
func (c *Corpus) attachOverlays(overlays map[string]map[string]string) error {
	for id, rec := range c.records {
		a, err := newLocalizedAnswer(rec.Answer, overlays[id])
		if err != nil {
			return fmt.Errorf("render answer for %q: %w", id, err)
		}
		c.answers[id] = a
	}

	for id := range overlays {
		if _, ok := c.records[id]; !ok {
			slog.Warn("dropping answer overlay without matching record", "id", id)
		}
	}
	return nil
}
