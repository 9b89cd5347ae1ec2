package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/scoredash/pkg/dataset"
	"github.com/Sumatoshi-tech/scoredash/pkg/report"
)

// ToolNameSummary is the report tool.
const ToolNameSummary = "scoredash_summary"

// MaxTop caps the top input.
const MaxTop = 1000

// Sentinel errors for tool input validation.
var (
	// ErrNoDataPath indicates the server was built without a dataset.
	ErrNoDataPath = errors.New("no dataset configured")
	// ErrInvalidTop indicates top is negative or above MaxTop.
	ErrInvalidTop = errors.New("top must be between 1 and 1000")
)

// SummaryInput is the input schema for the scoredash_summary tool.
type SummaryInput struct {
	Subject string `json:"subject,omitempty" jsonschema:"subject to rank students by (math, reading or writing; default: math)"`
	Top     int    `json:"top,omitempty"     jsonschema:"number of top students to return (default: 5)"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleSummary(
	_ context.Context, _ *mcpsdk.CallToolRequest, input SummaryInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	opt, err := s.summaryOptions(input)
	if err != nil {
		return errorResult(err)
	}

	if s.dataPath == "" {
		return errorResult(ErrNoDataPath)
	}

	ds, err := dataset.Load(s.dataPath)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(report.Build(ds, opt))
}

func (s *Server) summaryOptions(input SummaryInput) (report.Options, error) {
	opt := s.report

	if input.Subject != "" {
		subject, err := dataset.ParseSubject(input.Subject)
		if err != nil {
			return report.Options{}, err
		}

		opt.TopSubject = subject
	}

	switch {
	case input.Top < 0 || input.Top > MaxTop:
		return report.Options{}, fmt.Errorf("%w: %d", ErrInvalidTop, input.Top)
	case input.Top > 0:
		opt.TopN = input.Top
	}

	return opt, nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
