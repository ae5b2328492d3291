package policies

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// QTable is a tabular state-action value store keyed by state and action
// hashes.
type QTable struct {
	table map[string]map[string]float64
}

func NewQTable() *QTable {
	return &QTable{
		table: make(map[string]map[string]float64),
	}
}

func (q *QTable) Get(state, action string, def float64) float64 {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	if _, ok := q.table[state][action]; !ok {
		q.table[state][action] = def
	}
	return q.table[state][action]
}

func (q *QTable) Set(state, action string, val float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
	}
	q.table[state][action] = val
}

// Max returns the best action recorded for state, or def if the state has no
// entries yet.
func (q *QTable) Max(state string, def float64) (string, float64) {
	if _, ok := q.table[state]; !ok {
		q.table[state] = make(map[string]float64)
		return "", def
	}
	maxAction := ""
	maxVal := float64(math.MinInt)
	for a, val := range q.table[state] {
		if val > maxVal {
			maxAction = a
			maxVal = val
		}
	}

	if maxAction == "" {
		return "", def
	}

	return maxAction, maxVal
}

func (q *QTable) Size() int {
	return len(q.table)
}

// Read restores a table recorded with Record (jsonl, one state per line).
func (q *QTable) Read(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error reading file: %s", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		in := make(map[string]interface{})
		err := json.Unmarshal(scanner.Bytes(), &in)
		if err != nil {
			return fmt.Errorf("error reading file contents: %s", err)
		}
		state, ok := in["state"].(string)
		if !ok {
			return fmt.Errorf("error reading file contents: bad state key")
		}
		rawEntries, ok := in["entries"].(map[string]interface{})
		if !ok {
			return fmt.Errorf("error reading file contents: bad entries for state %s", state)
		}
		entries := make(map[string]float64)
		for k, v := range rawEntries {
			val, ok := v.(float64)
			if !ok {
				return fmt.Errorf("error reading file contents: bad value for state %s", state)
			}
			entries[k] = val
		}
		q.table[state] = entries
	}
	return nil
}

// Record writes the table to path as jsonl. Errors on individual states are
// skipped; an empty table writes nothing.
func (q *QTable) Record(path string) error {
	bs := new(bytes.Buffer)

	for state, entries := range q.table {
		stateJ := make(map[string]interface{})
		stateJ["state"] = state
		stateJ["entries"] = entries

		stateBS, err := json.Marshal(stateJ)
		if err == nil {
			bs.Write(stateBS)
			bs.Write([]byte("\n"))
		}
	}

	if bs.Len() > 0 {
		return os.WriteFile(path, bs.Bytes(), 0644)
	}
	return nil
}
