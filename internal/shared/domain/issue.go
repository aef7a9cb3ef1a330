package domain

import (
	"fmt"
	"sort"
	"sync"
)

// Severity classe un incident selon l'unité de travail qu'il interrompt
type Severity string

const (
	SeverityFatalRun   Severity = "fatal-run"
	SeverityFatalFile  Severity = "fatal-file"
	SeverityFatalRow   Severity = "fatal-row"
	SeverityDefaulted  Severity = "defaulted"
	SeverityDiagnostic Severity = "diagnostic"
)

// Issue représente un incident non bloquant enregistré pendant un run
type Issue struct {
	Severity Severity
	Stage    string
	Path     string
	Sheet    string
	Week     int
	Brand    string
	Column   string
	Count    int
	Message  string
}

// String formate l'incident pour les logs et le rapport
func (i Issue) String() string {
	s := fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	if i.Path != "" {
		s += " path=" + i.Path
	}
	if i.Sheet != "" {
		s += " sheet=" + i.Sheet
	}
	if i.Week > 0 {
		s += fmt.Sprintf(" week=%d", i.Week)
	}
	if i.Brand != "" {
		s += " brand=" + i.Brand
	}
	if i.Column != "" {
		s += " column=" + i.Column
	}
	if i.Count > 1 {
		s += fmt.Sprintf(" count=%d", i.Count)
	}
	return s
}

// Issues collecte les incidents; sûr pour un usage concurrent
type Issues struct {
	mu    sync.Mutex
	items []Issue
}

// NewIssues crée un collecteur vide
func NewIssues() *Issues {
	return &Issues{items: make([]Issue, 0)}
}

// Add ajoute un incident
func (c *Issues) Add(issue Issue) {
	if issue.Count == 0 {
		issue.Count = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, issue)
}

// Merge ajoute tous les incidents d'un autre collecteur
func (c *Issues) Merge(other *Issues) {
	if other == nil || other == c {
		return
	}
	for _, i := range other.All() {
		c.Add(i)
	}
}

// All retourne une copie des incidents dans l'ordre d'insertion
func (c *Issues) All() []Issue {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Issue{}, c.items...)
}

// Count retourne le nombre d'incidents d'une sévérité, pondéré par Count
func (c *Issues) Count(sev Severity) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, i := range c.items {
		if i.Severity == sev {
			n += i.Count
		}
	}
	return n
}

// BySeverity regroupe les incidents par sévérité (ordre stable)
func (c *Issues) BySeverity() map[Severity][]Issue {
	out := make(map[Severity][]Issue)
	for _, i := range c.All() {
		out[i.Severity] = append(out[i.Severity], i)
	}
	for _, list := range out {
		sort.SliceStable(list, func(a, b int) bool { return list[a].Stage < list[b].Stage })
	}
	return out
}
