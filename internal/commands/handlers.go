package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"proctrack/internal/config"
	"proctrack/internal/ipc"
	"proctrack/internal/process"
)

func showProcesses(_ context.Context, env Env, payload json.RawMessage) (Result, error) {
	req, err := decode[ipc.SelectPayload](ipc.KindShow, payload)
	if err != nil {
		return Result{}, err
	}
	var set *process.IDSet
	if expr := strings.TrimSpace(req.IDs); expr != "" {
		parsed, err := process.ParseIDSet(expr)
		if err != nil {
			return Result{}, fmt.Errorf("invalid range %s -> %v", req.IDs, err)
		}
		set = &parsed
	}

	var entries []process.Entry
	_ = env.Store.ReadRegistry(func(r *process.Registry) error {
		if set == nil {
			entries = r.Entries()
		} else {
			entries = r.Select(*set)
		}
		return nil
	})
	if entries == nil {
		entries = []process.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return Result{}, fmt.Errorf("encode processes: %w", err)
	}
	return Result{Message: string(data)}, nil
}

func showSettings(_ context.Context, env Env, _ json.RawMessage) (Result, error) {
	data, err := json.Marshal(env.Store.Config())
	if err != nil {
		return Result{}, fmt.Errorf("encode settings: %w", err)
	}
	return Result{Message: string(data)}, nil
}

func addProcess(_ context.Context, env Env, payload json.RawMessage) (Result, error) {
	req, err := decode[ipc.AddPayload](ipc.KindAdd, payload)
	if err != nil {
		return Result{}, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return Result{}, errors.New("process name is required")
	}

	p := process.New(req.Name)
	p.Icon = req.Icon
	p.Notes = req.Notes
	if req.Duration != "" {
		if p.Duration, err = process.ParseDuration(req.Duration); err != nil {
			return Result{}, err
		}
	}
	if req.AddedDate != "" {
		if p.AddedDate, err = process.ParseDate(req.AddedDate); err != nil {
			return Result{}, err
		}
	}

	err = env.Store.WriteRegistry(func(r *process.Registry) error {
		return r.Add(p)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "added " + p.Name, Process: p.Name}, nil
}

func removeProcess(_ context.Context, env Env, payload json.RawMessage) (Result, error) {
	req, err := decode[ipc.RemovePayload](ipc.KindRemove, payload)
	if err != nil {
		return Result{}, err
	}
	var removed process.Process
	err = env.Store.WriteRegistry(func(r *process.Registry) error {
		var rmErr error
		removed, rmErr = r.Remove(req.ID)
		return rmErr
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "removed " + removed.Name, Process: removed.Name}, nil
}

func changeOptions(_ context.Context, env Env, payload json.RawMessage) (Result, error) {
	req, err := decode[ipc.OptionPayload](ipc.KindOption, payload)
	if err != nil {
		return Result{}, err
	}
	err = env.Store.WriteConfig(func(c *config.Intervals) error {
		next, applyErr := c.Apply(req)
		if applyErr != nil {
			return fmt.Errorf("invalid config -> %v", applyErr)
		}
		*c = next
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "changed config"}, nil
}

func changeProcess(_ context.Context, env Env, payload json.RawMessage) (Result, error) {
	req, err := decode[ipc.ChangePayload](ipc.KindChange, payload)
	if err != nil {
		return Result{}, err
	}

	var duration *uint64
	if req.Duration != nil {
		d, err := process.ParseDuration(*req.Duration)
		if err != nil {
			return Result{}, err
		}
		duration = &d
	}
	var added *process.Timestamp
	if req.AddedDate != nil {
		ts, err := process.ParseDate(*req.AddedDate)
		if err != nil {
			return Result{}, err
		}
		added = &ts
	}

	var name string
	err = env.Store.WriteRegistry(func(r *process.Registry) error {
		target, err := r.Get(req.ID)
		if err != nil {
			return err
		}
		if req.Tracking != nil {
			target.IsTracked = *req.Tracking
		}
		if req.Icon != nil {
			target.Icon = *req.Icon
		}
		if duration != nil {
			target.Duration = *duration
		}
		if req.Notes != nil {
			target.Notes = *req.Notes
		}
		if added != nil {
			target.AddedDate = *added
		}
		name = target.Name
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "changed " + name, Process: name}, nil
}

func changeDuration(_ context.Context, env Env, payload json.RawMessage) (Result, error) {
	req, err := decode[ipc.DurationPayload](ipc.KindDuration, payload)
	if err != nil {
		return Result{}, err
	}
	var action string
	switch req.Operation {
	case ipc.OperationAdd:
		action = "added"
	case ipc.OperationSubtract:
		action = "subtracted"
	default:
		return Result{}, fmt.Errorf("unknown duration operation %q", req.Operation)
	}

	var name string
	err = env.Store.WriteRegistry(func(r *process.Registry) error {
		target, err := r.Get(req.ID)
		if err != nil {
			return err
		}
		if req.Operation == ipc.OperationAdd {
			target.AddDuration(req.Seconds)
		} else {
			target.SubtractDuration(req.Seconds)
		}
		name = target.Name
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: fmt.Sprintf("%s %d seconds for %s", action, req.Seconds, name), Process: name}, nil
}

func moveProcess(_ context.Context, env Env, payload json.RawMessage) (Result, error) {
	req, err := decode[ipc.MovePayload](ipc.KindMove, payload)
	if err != nil {
		return Result{}, err
	}
	dir, err := process.ParseDirection(req.Direction)
	if err != nil {
		return Result{}, err
	}
	var name string
	err = env.Store.WriteRegistry(func(r *process.Registry) error {
		var moveErr error
		name, moveErr = r.Move(req.ID, dir)
		return moveErr
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "moved " + name, Process: name}, nil
}

func quit(context.Context, Env, json.RawMessage) (Result, error) {
	return Result{Message: "stopping server"}, nil
}
