// Package environment composes the layered variables handed to each test command.
package environment

import (
	"fmt"
	"sort"
	"strings"
)

// Compose merges layers in increasing precedence: for a key defined by several layers the
// value from the last one wins. Nil layers are allowed and no input map is modified.
func Compose(layers ...map[string]string) map[string]string {
	size := 0
	for _, layer := range layers {
		size += len(layer)
	}
	out := make(map[string]string, size)
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// Environ overlays vars onto a KEY=VALUE list such as os.Environ() and returns a sorted
// list suitable for exec.Cmd.Env.
func Environ(base []string, vars map[string]string) []string {
	envMap := make(map[string]string, len(base)+len(vars))
	for _, kv := range base {
		if idx := strings.Index(kv, "="); idx != -1 {
			envMap[kv[:idx]] = kv[idx+1:]
		}
	}
	for k, v := range vars {
		envMap[k] = v
	}
	keys := make([]string, 0, len(envMap))
	for k := range envMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, envMap[k]))
	}
	return out
}
