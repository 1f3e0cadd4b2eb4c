package approval

import (
	"encoding/json"
	"fmt"
)

// BashToolName is the reserved tool name that triggers command analysis
// instead of plain tool-name allowlist matching.
const BashToolName = "bash"

const descriptionMaxLen = 60

// Engine composes the command analyzer, allowlist store, and policy
// evaluator, and renders the human-readable descriptions a UI shows for a
// pending approval. It never executes the tool itself.
type Engine struct {
	store *Store
}

// NewEngine creates an Engine backed by store. The store must already be
// Load-ed.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// Check evaluates whether a tool call may proceed.
func (e *Engine) Check(toolName string, input json.RawMessage) OutcomeDetail {
	security := e.store.ToolSecurity(toolName)

	var pattern string
	var satisfied bool

	if toolName == BashToolName {
		command, _ := bashCommand(input)
		analysis := Analyze(command)
		if analysis.Safe {
			satisfied = true
		} else {
			pattern = AllowlistPattern(analysis)
			if pattern != "" {
				satisfied = e.store.IsAllowed(BashToolName, pattern)
			}
		}

		outcome := Evaluate(security.Security, security.Ask, satisfied)
		return e.detailFor(outcome, security, toolName, bashDescription(command), pattern)
	}

	pattern = toolName
	satisfied = e.store.IsAllowed(toolName, toolName)
	outcome := Evaluate(security.Security, security.Ask, satisfied)
	return e.detailFor(outcome, security, toolName, genericDescription(toolName, input), pattern)
}

func (e *Engine) detailFor(outcome ApprovalOutcome, security ToolSecurity, toolName, description, pattern string) OutcomeDetail {
	switch outcome {
	case OutcomeAllow:
		return OutcomeDetail{Outcome: OutcomeAllow}
	case OutcomeDenied:
		return OutcomeDetail{
			Outcome: OutcomeDenied,
			Reason:  fmt.Sprintf("Tool %s denied by security policy (%s)", toolName, security.Security),
		}
	default:
		return OutcomeDetail{
			Outcome:     OutcomeAsk,
			Description: description,
			Pattern:     pattern,
		}
	}
}

// Resolve records the effect of a user's decision. Only allow_always
// mutates the allowlist; other decisions are no-ops against the store.
func (e *Engine) Resolve(toolName, pattern string, decision ApprovalDecision) error {
	if decision != DecisionAllowAlways || pattern == "" {
		return nil
	}
	e.store.Add(toolName, pattern)
	return e.store.Save()
}

func bashCommand(input json.RawMessage) (string, error) {
	var params struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return "", err
	}
	return params.Command, nil
}

func bashDescription(command string) string {
	return fmt.Sprintf("bash(%q)", command)
}

func genericDescription(toolName string, input json.RawMessage) string {
	params := string(input)
	if len(params) > descriptionMaxLen {
		params = params[:descriptionMaxLen] + "..."
	}
	return fmt.Sprintf("%s(%s)", toolName, params)
}
