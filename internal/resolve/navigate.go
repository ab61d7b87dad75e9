package resolve

// Navigate returns every value the path selects from root. All three codecs
// decode into the same generic shape (map[string]any for objects, []any for
// arrays), so one traversal serves YAML, JSON, and TOML alike.
//
// Each segment maps the current frontier of values to the next one: key and
// index segments select at most one child per value, wildcards fan out over
// array elements, and recursive descent collects the key anywhere in the
// subtree. A type mismatch (indexing an object, keying into a scalar)
// contributes nothing rather than failing.
func Navigate(root any, path []Step) []any {
	frontier := []any{root}

	for _, step := range path {
		if len(frontier) == 0 {
			return nil
		}

		var next []any
		switch step.Kind {
		case StepKey:
			for _, value := range frontier {
				if obj, ok := value.(map[string]any); ok {
					if child, ok := obj[step.Key]; ok {
						next = append(next, child)
					}
				}
			}

		case StepIndex:
			for _, value := range frontier {
				if arr, ok := value.([]any); ok && step.Index < len(arr) {
					next = append(next, arr[step.Index])
				}
			}

		case StepWildcard:
			for _, value := range frontier {
				if arr, ok := value.([]any); ok {
					next = append(next, arr...)
				}
			}

		case StepRecursiveKey:
			for _, value := range frontier {
				next = collectKey(value, step.Key, next)
			}
		}

		frontier = next
	}

	return frontier
}

// collectKey appends every value stored under key anywhere in the subtree,
// using an explicit work stack so document depth never grows the call stack.
func collectKey(root any, key string, results []any) []any {
	stack := []any{root}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch n := node.(type) {
		case map[string]any:
			if v, ok := n[key]; ok {
				results = append(results, v)
			}
			for _, v := range n {
				stack = append(stack, v)
			}
		case []any:
			stack = append(stack, n...)
		}
	}

	return results
}
