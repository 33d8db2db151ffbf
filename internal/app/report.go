package app

import (
	"fmt"
	"strings"
)

// VerdictReport is the outcome of analyzing one candidate connection.
type VerdictReport struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Verdict string `yaml:"verdict"`
	Port    string `yaml:"port,omitempty"`
	Type    string `yaml:"type,omitempty"`
}

func (r *VerdictReport) Text() string {
	s := fmt.Sprintf("%s -> %s: %s", r.From, r.To, r.Verdict)
	if r.Port != "" {
		s += fmt.Sprintf(" (%s=%s)", r.Port, r.Type)
	}
	return s + "\n"
}

// SpecializationReport is one port a solution resolves.
type SpecializationReport struct {
	Port      string `yaml:"port"`
	Type      string `yaml:"type"`
	Unchanged bool   `yaml:"unchanged,omitempty"`
}

// ReplacementReport is one node class swap of a commit plan.
type ReplacementReport struct {
	Node string `yaml:"node"`
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// PlanReport describes what committing a solution would change.
type PlanReport struct {
	Replacements     []ReplacementReport `yaml:"replacements,omitempty"`
	RemovedCables    []string            `yaml:"removed_cables,omitempty"`
	DroppedConstants []string            `yaml:"dropped_constants,omitempty"`
}

// SolutionReport is one way to make a connection legal.
type SolutionReport struct {
	Kind            string                 `yaml:"kind"`
	Summary         string                 `yaml:"summary"`
	Specializations []SpecializationReport `yaml:"specializations,omitempty"`
	Converter       string                 `yaml:"converter,omitempty"`
	Plan            *PlanReport            `yaml:"plan,omitempty"`
}

// BridgeReport lists the solutions for a connection, best first.
type BridgeReport struct {
	From      string           `yaml:"from"`
	To        string           `yaml:"to"`
	Verdict   string           `yaml:"verdict"`
	Solutions []SolutionReport `yaml:"solutions"`
}

func (r *BridgeReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> %s: %s\n", r.From, r.To, r.Verdict)
	if len(r.Solutions) == 0 {
		b.WriteString("  no solutions\n")
	}
	for i, sol := range r.Solutions {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, sol.Summary)
		if sol.Plan == nil {
			continue
		}
		for _, rep := range sol.Plan.Replacements {
			fmt.Fprintf(&b, "     %s: %s -> %s\n", rep.Node, rep.From, rep.To)
		}
		for _, c := range sol.Plan.RemovedCables {
			fmt.Fprintf(&b, "     remove cable %s\n", c)
		}
		for _, p := range sol.Plan.DroppedConstants {
			fmt.Fprintf(&b, "     drop constant %s\n", p)
		}
	}
	return b.String()
}

// NetworkReport describes a port's generic network.
type NetworkReport struct {
	Port          string   `yaml:"port"`
	Members       []string `yaml:"members"`
	Compatibility string   `yaml:"compatibility"`
	Types         []string `yaml:"types"`
}

func (r *NetworkReport) Text() string {
	return fmt.Sprintf("%s\n  members: %s\n  %s: %s\n",
		r.Port, strings.Join(r.Members, ", "), r.Compatibility, strings.Join(r.Types, ", "))
}

// RevertReport describes returning a port to its generic type.
type RevertReport struct {
	Port           string   `yaml:"port"`
	Revertible     bool     `yaml:"revertible"`
	Nondestructive bool     `yaml:"nondestructive"`
	Ports          []string `yaml:"ports,omitempty"`
	Blocked        []string `yaml:"blocked,omitempty"`
	InvalidCables  []string `yaml:"invalid_cables,omitempty"`
}

func (r *RevertReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: revertible=%t nondestructive=%t\n", r.Port, r.Revertible, r.Nondestructive)
	if len(r.Ports) > 0 {
		fmt.Fprintf(&b, "  reverts: %s\n", strings.Join(r.Ports, ", "))
	}
	if len(r.Blocked) > 0 {
		fmt.Fprintf(&b, "  blocked: %s\n", strings.Join(r.Blocked, ", "))
	}
	if len(r.InvalidCables) > 0 {
		fmt.Fprintf(&b, "  breaks: %s\n", strings.Join(r.InvalidCables, ", "))
	}
	return b.String()
}

// CandidateReport is how one port can be reached from a drag source.
type CandidateReport struct {
	Port      string `yaml:"port"`
	Reach     string `yaml:"reach"`
	Solutions int    `yaml:"solutions,omitempty"`
}

// EligibilityReport covers every candidate of a drag source.
type EligibilityReport struct {
	Source     string            `yaml:"source"`
	Candidates []CandidateReport `yaml:"candidates"`
}

func (r *EligibilityReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Source)
	for _, c := range r.Candidates {
		fmt.Fprintf(&b, "  %-24s %s", c.Port, c.Reach)
		if c.Solutions > 1 {
			fmt.Fprintf(&b, " (%d)", c.Solutions)
		}
		b.WriteString("\n")
	}
	return b.String()
}
