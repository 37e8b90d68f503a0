package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/fisolve/bond"
	"github.com/meenmo/fisolve/utils"
)

// cashflowJSON is one cashflow with decimal amounts per 100 face.
type cashflowJSON struct {
	Date      string          `json:"date"`
	Coupon    decimal.Decimal `json:"coupon"`
	Principal decimal.Decimal `json:"principal"`
}

func parseCashflows(in []cashflowJSON) ([]bond.Cashflow, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("cashflows are required")
	}
	cfs := make([]bond.Cashflow, 0, len(in))
	for _, cf := range in {
		d, err := utils.ParseDate(cf.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid cashflow date %s: %v", cf.Date, err)
		}
		cfs = append(cfs, bond.Cashflow{
			Date:      d,
			Coupon:    cf.Coupon.InexactFloat64(),
			Principal: cf.Principal.InexactFloat64(),
		})
	}
	return cfs, nil
}

func parseDate(field, s string) (time.Time, error) {
	d, err := utils.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %v", field, err)
	}
	return d, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		if stat, err := f.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			return nil, fmt.Errorf("no input: pass --input or pipe JSON to stdin")
		}
	}
	return io.ReadAll(in)
}

func parseInputs[T any](raw []byte) ([]T, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []T
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input T
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []T{input}, false, nil
}

// partialError is returned by a process call whose output is still worth
// printing, e.g. a batch where some of the bonds failed.
type partialError[O any] struct {
	out O
	msg string
}

func (e *partialError[O]) Error() string { return e.msg }

// runBatch reads the inputs, processes each one and writes the outputs in
// the input's shape. failed builds the output for an element whose process
// call returned an error.
func runBatch[I, O any](cmd *cobra.Command, a *app, process func(I) (O, error), failed func(I, error) O, taskID func(I) string) error {
	raw, err := readInput(cmd, strings.TrimSpace(a.v.GetString("input")))
	if err != nil {
		return exitError(cmd, fmt.Sprintf("read input: %v", err))
	}
	inputs, isArray, err := parseInputs[I](raw)
	if err != nil {
		return exitError(cmd, fmt.Sprintf("parse JSON: %v", err))
	}

	hadError := false
	outputs := make([]O, 0, len(inputs))
	for _, in := range inputs {
		out, err := process(in)
		if err != nil {
			hadError = true
			a.logger.WithField("task_id", taskID(in)).WithError(err).Warn("input failed")
			var pe *partialError[O]
			if errors.As(err, &pe) {
				outputs = append(outputs, pe.out)
			} else {
				outputs = append(outputs, failed(in, err))
			}
			continue
		}
		// NaN and Inf cannot be encoded; report the element, keep the batch.
		if _, err := json.Marshal(out); err != nil {
			hadError = true
			err = fmt.Errorf("result is not finite: %w", err)
			a.logger.WithField("task_id", taskID(in)).WithError(err).Warn("input failed")
			outputs = append(outputs, failed(in, err))
			continue
		}
		outputs = append(outputs, out)
	}

	var v any = outputs
	if !isArray {
		v = outputs[0]
	}
	b, err := encode(v, a.v.GetString("format"))
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(string(b), "\n"))

	if hadError {
		return errBatchFailed
	}
	return nil
}

// encode writes v as JSON, or as YAML with the same keys as the JSON form.
func encode(v any, format string) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil || !strings.EqualFold(format, "yaml") {
		return b, err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, err
	}
	return yaml.Marshal(generic)
}

func exitError(cmd *cobra.Command, msg string) error {
	b, _ := json.Marshal(struct {
		Error string `json:"error"`
	}{msg})
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return errBatchFailed
}
