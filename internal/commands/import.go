package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"proctrack/internal/ipc"
	"proctrack/internal/process"
)

func importProcesses(_ context.Context, env Env, payload json.RawMessage) (Result, error) {
	req, err := decode[ipc.ImportPayload](ipc.KindImport, payload)
	if err != nil {
		return Result{}, err
	}
	if req.Path == "" {
		return Result{}, errors.New("import path is required")
	}

	data, err := os.ReadFile(req.Path)
	if err != nil {
		return Result{}, fmt.Errorf("cannot open file %s -> %v", req.Path, err)
	}
	incoming, err := decodeImport(data, req.Legacy)
	if err != nil {
		return Result{}, err
	}

	added := make([]string, 0, len(incoming))
	var existing []string
	_ = env.Store.WriteRegistry(func(r *process.Registry) error {
		for _, p := range incoming {
			p.IsRunning = false
			if err := r.Add(p); err != nil {
				existing = append(existing, p.Name)
				continue
			}
			added = append(added, p.Name)
		}
		return nil
	})

	msg := "added " + process.QuoteNames(added)
	if len(existing) > 0 {
		msg += ", already tracked " + process.QuoteNames(existing)
	}
	return Result{Message: msg}, nil
}

func decodeImport(data []byte, legacy bool) ([]process.Process, error) {
	if !legacy {
		items, err := process.DecodeProcesses(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("error parsing json -> %v", err)
		}
		return items, nil
	}

	items, err := process.DecodeLegacy(bytes.NewReader(data))
	if err != nil {
		var perr *process.Error
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, fmt.Errorf("error parsing json -> %v", err)
	}
	return items, nil
}
