package host

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/reglet-dev/ukagaka-sdk/application/schema"
	"github.com/reglet-dev/ukagaka-sdk/textcodec"
)

// Target is anything a scenario can drive: a wasm PluginInstance or an
// in-process harness.
type Target interface {
	Load(ctx context.Context, raw []byte) (bool, error)
	LoadU(ctx context.Context, path string) (bool, error)
	Request(ctx context.Context, payload []byte) ([]byte, error)
	Unload(ctx context.Context) (bool, error)
}

// Call names a scenario step.
type Call string

const (
	CallLoad    Call = "load"
	CallLoadU   Call = "loadu"
	CallRequest Call = "request"
	CallUnload  Call = "unload"
)

// Scenario is a scripted sequence of host calls with expectations.
//
//	name: probe both load entry points
//	steps:
//	  - call: loadu
//	    path: 'C:\ghost\plug\'
//	    expect: {ok: true}
//	  - call: load
//	    path: 'C:\ghost\plug\'
//	    codepage: 932
//	  - call: request
//	    payload: "GET Version SHIORI/3.0\r\n\r\n"
//	    expect: {contains: "200 OK"}
type Scenario struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps" jsonschema:"minItems=1"`
}

// Step is one host call.
type Step struct {
	Call Call `yaml:"call" jsonschema:"enum=load,enum=loadu,enum=request,enum=unload"`
	// Path is the module path for load and loadu.
	Path string `yaml:"path,omitempty"`
	// Codepage encodes Path for load. Zero sends the UTF-8 bytes.
	Codepage uint32 `yaml:"codepage,omitempty"`
	// Payload is the request body. PayloadHex takes precedence if set.
	Payload    string  `yaml:"payload,omitempty"`
	PayloadHex string  `yaml:"payload_hex,omitempty"`
	Expect     *Expect `yaml:"expect,omitempty"`
}

// Expect holds the checks for a step. Unset fields are not checked.
type Expect struct {
	OK          *bool   `yaml:"ok,omitempty"`
	Response    *string `yaml:"response,omitempty"`
	ResponseHex *string `yaml:"response_hex,omitempty"`
	Contains    string  `yaml:"contains,omitempty"`
	Length      *int    `yaml:"length,omitempty"`
}

var scenarioValidator = sync.OnceValues(func() (*schema.Validator, error) {
	return schema.ForType(Scenario{})
})

// ScenarioSchema returns the JSON schema of scenario files.
func ScenarioSchema() ([]byte, error) {
	return schema.GenerateSchema(Scenario{},
		schema.WithTitle("ukagaka-probe scenario"),
		schema.WithDescription("Sequence of host calls replayed against a plugin"),
	)
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}

	v, err := scenarioValidator()
	if err != nil {
		return nil, fmt.Errorf("scenario schema: %w", err)
	}
	if err := v.ValidateYAML(data); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadScenario reads a YAML scenario from r.
func LoadScenario(r io.Reader) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return ParseScenario(data)
}

// Validate checks that every step is well formed.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %q has no steps", s.Name)
	}
	for i, step := range s.Steps {
		switch step.Call {
		case CallLoad, CallLoadU, CallUnload:
		case CallRequest:
			if step.PayloadHex != "" {
				if _, err := hex.DecodeString(step.PayloadHex); err != nil {
					return fmt.Errorf("step %d: payload_hex: %w", i, err)
				}
			}
		default:
			return fmt.Errorf("step %d: unknown call %q", i, step.Call)
		}
		if step.Codepage != 0 && step.Call != CallLoad {
			return fmt.Errorf("step %d: codepage only applies to load", i)
		}
		if step.Expect != nil && step.Expect.ResponseHex != nil {
			if _, err := hex.DecodeString(*step.Expect.ResponseHex); err != nil {
				return fmt.Errorf("step %d: response_hex: %w", i, err)
			}
		}
	}
	return nil
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int
	Call     Call
	OK       bool
	Response []byte
	Err      error
	Failures []string
}

// Passed reports whether the call succeeded at the transport level and
// met its expectations.
func (r StepResult) Passed() bool {
	return r.Err == nil && len(r.Failures) == 0
}

// Report collects the results of a scenario run.
type Report struct {
	Scenario string
	Steps    []StepResult
}

// Passed reports whether every step passed.
func (r *Report) Passed() bool {
	for _, s := range r.Steps {
		if !s.Passed() {
			return false
		}
	}
	return true
}

// Run executes the scenario against t. Steps keep running after a failed
// expectation; a transport error stops the run and is returned.
func (s *Scenario) Run(ctx context.Context, t Target) (*Report, error) {
	report := &Report{Scenario: s.Name}
	for i, step := range s.Steps {
		result := StepResult{Index: i, Call: step.Call}
		result.OK, result.Response, result.Err = step.invoke(ctx, t)
		if result.Err != nil {
			report.Steps = append(report.Steps, result)
			return report, fmt.Errorf("step %d (%s): %w", i, step.Call, result.Err)
		}
		result.Failures = step.check(result.OK, result.Response)
		report.Steps = append(report.Steps, result)
	}
	return report, nil
}

func (s Step) invoke(ctx context.Context, t Target) (bool, []byte, error) {
	switch s.Call {
	case CallLoadU:
		ok, err := t.LoadU(ctx, s.Path)
		return ok, nil, err
	case CallLoad:
		raw := []byte(s.Path)
		if s.Codepage != 0 {
			encoded, err := textcodec.Encode(s.Path, s.Codepage)
			if err != nil {
				return false, nil, err
			}
			raw = encoded
		}
		ok, err := t.Load(ctx, raw)
		return ok, nil, err
	case CallRequest:
		resp, err := t.Request(ctx, s.payload())
		return err == nil, resp, err
	case CallUnload:
		ok, err := t.Unload(ctx)
		return ok, nil, err
	default:
		return false, nil, fmt.Errorf("unknown call %q", s.Call)
	}
}

func (s Step) payload() []byte {
	if s.PayloadHex != "" {
		b, _ := hex.DecodeString(s.PayloadHex)
		return b
	}
	return []byte(s.Payload)
}

func (s Step) check(ok bool, resp []byte) []string {
	e := s.Expect
	if e == nil {
		return nil
	}
	var failures []string
	if e.OK != nil && *e.OK != ok {
		failures = append(failures, fmt.Sprintf("ok: got %t, want %t", ok, *e.OK))
	}
	if e.Response != nil && string(resp) != *e.Response {
		failures = append(failures, fmt.Sprintf("response: got %q, want %q", resp, *e.Response))
	}
	if e.ResponseHex != nil {
		want, _ := hex.DecodeString(*e.ResponseHex)
		if !bytes.Equal(resp, want) {
			failures = append(failures, fmt.Sprintf("response: got %x, want %x", resp, want))
		}
	}
	if e.Contains != "" && !strings.Contains(string(resp), e.Contains) {
		failures = append(failures, fmt.Sprintf("response does not contain %q", e.Contains))
	}
	if e.Length != nil && len(resp) != *e.Length {
		failures = append(failures, fmt.Sprintf("length: got %d, want %d", len(resp), *e.Length))
	}
	return failures
}
