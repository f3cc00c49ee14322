package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/ukagaka-sdk/application/schema"
	"github.com/reglet-dev/ukagaka-sdk/host"
	"github.com/reglet-dev/ukagaka-sdk/pkg/errutil"
	"github.com/reglet-dev/ukagaka-sdk/textcodec"
)

// NewLoadCmd creates the load subcommand.
func NewLoadCmd() *cobra.Command {
	var legacy bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Call loadu (or load with --legacy), then unload",
		Long: `Call the plugin's load entry point with the module path and report
the result. loadu is used when the plugin exports it, unless --legacy is
given; load encodes the path with --codepage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			ok, entry, err := s.load(cmd, legacy)
			if err != nil {
				return err
			}
			cmd.Printf("%s(%q) = %t\n", entry, s.modulePath(), ok)

			unloaded, err := s.plugin.Unload(cmd.Context())
			if err != nil {
				return s.fail("unload failed", oops.Code("PLUGIN_TRAP").Wrapf(err, "unload"))
			}
			cmd.Printf("unload() = %t\n", unloaded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&legacy, "legacy", false, "use load even if the plugin exports loadu")
	return cmd
}

// NewRequestCmd creates the request subcommand.
func NewRequestCmd() *cobra.Command {
	var (
		payloadFile string
		asHex       bool
		noLoad      bool
	)

	cmd := &cobra.Command{
		Use:   "request [payload]",
		Short: "Load the plugin, send one request and print the response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := requestPayload(args, payloadFile)
			if err != nil {
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			if !noLoad {
				if ok, entry, err := s.load(cmd, false); err != nil {
					return err
				} else if !ok {
					s.logger.Warn("plugin reported load failure", "entry", entry)
				}
			}

			resp, err := s.plugin.Request(cmd.Context(), payload)
			if err != nil {
				return s.fail("request failed", oops.Code("PLUGIN_TRAP").Wrapf(err, "request"))
			}
			if asHex {
				cmd.Println(hex.EncodeToString(resp))
			} else {
				cmd.Print(string(resp))
				if !strings.HasSuffix(string(resp), "\n") {
					cmd.Println()
				}
			}
			s.logger.Debug("request complete", "request_bytes", len(payload), "response_bytes", len(resp))

			if _, err := s.plugin.Unload(cmd.Context()); err != nil {
				return s.fail("unload failed", oops.Code("PLUGIN_TRAP").Wrapf(err, "unload"))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&payloadFile, "file", "f", "", "read the request from a file ('-' for stdin)")
	cmd.Flags().BoolVar(&asHex, "hex", false, "print the response as hex")
	cmd.Flags().BoolVar(&noLoad, "no-load", false, "send the request without loading first")
	return cmd
}

// NewRunCmd creates the run subcommand.
func NewRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Replay a scenario of host calls and check expectations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return oops.Code("SCENARIO_READ").With("scenario", args[0]).Wrapf(err, "open scenario")
			}
			scenario, err := host.LoadScenario(f)
			_ = f.Close()
			if err != nil {
				err = oops.Code("SCENARIO_INVALID").
					With("scenario", args[0]).
					Hint("run 'ukagaka-probe scenario-schema' for the accepted format").
					Wrap(err)
				errutil.LogError(newLogger("info"), "invalid scenario", err)
				return err
			}

			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close(cmd.Context())

			report, runErr := scenario.Run(cmd.Context(), s.plugin)
			printReport(cmd, report)
			if runErr != nil {
				return s.fail("scenario aborted", oops.Code("PLUGIN_TRAP").With("scenario", scenario.Name).Wrap(runErr))
			}
			if !report.Passed() {
				return oops.Code("SCENARIO_FAILED").With("scenario", scenario.Name).Errorf("scenario %q failed", scenario.Name)
			}
			return nil
		},
	}
}

// NewConfigSchemaCmd creates the config-schema subcommand.
func NewConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config-schema",
		Short: "Print the JSON schema of the probe config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schema.GenerateSchema(Config{},
				schema.WithTitle("ukagaka-probe config"),
				schema.WithDescription("Configuration file for ukagaka-probe"),
			)
			if err != nil {
				return oops.Code("SCHEMA").Wrap(err)
			}
			cmd.Println(string(data))
			return nil
		},
	}
}

// NewScenarioSchemaCmd creates the scenario-schema subcommand.
func NewScenarioSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario-schema",
		Short: "Print the JSON schema of scenario files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := host.ScenarioSchema()
			if err != nil {
				return oops.Code("SCHEMA").Wrap(err)
			}
			cmd.Println(string(data))
			return nil
		},
	}
}

// load calls loadu when available (and not forced legacy), else load.
func (s *session) load(cmd *cobra.Command, legacy bool) (bool, string, error) {
	path := s.modulePath()
	if !legacy && s.plugin.HasExport("loadu") {
		ok, err := s.plugin.LoadU(cmd.Context(), path)
		if err != nil {
			return false, "loadu", s.fail("loadu failed", oops.Code("PLUGIN_TRAP").With("path", path).Wrapf(err, "loadu"))
		}
		return ok, "loadu", nil
	}

	raw := []byte(path)
	if s.cfg.Codepage != 0 {
		encoded, err := textcodec.Encode(path, s.cfg.Codepage)
		if err != nil {
			return false, "load", s.fail("cannot encode module path", oops.Code("ENCODE").
				With("path", path).
				With("codepage", s.cfg.Codepage).
				Wrap(err))
		}
		raw = encoded
	}
	ok, err := s.plugin.Load(cmd.Context(), raw)
	if err != nil {
		return false, "load", s.fail("load failed", oops.Code("PLUGIN_TRAP").With("path", path).Wrapf(err, "load"))
	}
	return ok, "load", nil
}

func (s *session) fail(msg string, err error) error {
	errutil.LogError(s.logger, msg, err)
	return err
}

func requestPayload(args []string, file string) ([]byte, error) {
	switch {
	case file == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, oops.Code("PAYLOAD_READ").Wrapf(err, "read stdin")
		}
		return data, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, oops.Code("PAYLOAD_READ").With("file", file).Wrapf(err, "read payload")
		}
		return data, nil
	case len(args) == 1:
		return []byte(unescape(args[0])), nil
	default:
		return nil, nil
	}
}

func printReport(cmd *cobra.Command, report *host.Report) {
	if report == nil {
		return
	}
	for _, step := range report.Steps {
		status := "PASS"
		if !step.Passed() {
			status = "FAIL"
		}
		line := fmt.Sprintf("%s  #%d %s", status, step.Index, step.Call)
		switch step.Call {
		case host.CallRequest:
			line += fmt.Sprintf(" (%d bytes)", len(step.Response))
		default:
			line += fmt.Sprintf(" = %t", step.OK)
		}
		cmd.Println(line)
		if step.Err != nil {
			cmd.Printf("      error: %v\n", step.Err)
		}
		for _, f := range step.Failures {
			cmd.Printf("      %s\n", f)
		}
	}
}
