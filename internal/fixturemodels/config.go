// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

package fixturemodels

import "fmt"

// groupAndIDs extracts the entity group name and id list every fixture
// model's Setup needs. ids may arrive as []int64 (direct Go callers,
// e.g. tests) or []interface{} of float64 (decoded from YAML/JSON
// scenario config), since ModelConfig.Config is a bare map[string]any.
func groupAndIDs(config map[string]any) (group string, ids []int64, err error) {
	groupRaw, ok := config["group"]
	if !ok {
		return "", nil, fmt.Errorf("fixturemodels: missing required config key %q", "group")
	}
	group, ok = groupRaw.(string)
	if !ok {
		return "", nil, fmt.Errorf("fixturemodels: %q must be a string, got %T", "group", groupRaw)
	}

	idsRaw, ok := config["ids"]
	if !ok {
		return "", nil, fmt.Errorf("fixturemodels: missing required config key %q", "ids")
	}
	ids, err = toInt64Slice(idsRaw)
	if err != nil {
		return "", nil, fmt.Errorf("fixturemodels: ids: %w", err)
	}
	return group, ids, nil
}

func toInt64Slice(raw any) ([]int64, error) {
	switch v := raw.(type) {
	case []int64:
		return v, nil
	case []interface{}:
		ids := make([]int64, len(v))
		for i, elem := range v {
			id, err := toInt64(elem)
			if err != nil {
				return nil, err
			}
			ids[i] = id
		}
		return ids, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", raw)
	}
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("unsupported type %T", raw)
	}
}
