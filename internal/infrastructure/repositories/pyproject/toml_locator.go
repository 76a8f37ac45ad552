package pyproject

import (
	"fmt"

	"github.com/pelletier/go-toml/v2/unstable"
)

const (
	groupDependencies = "dependencies"
	groupOptional     = "optional-dependencies"
	tableProject      = "project"
)

// stringLiteral is one string inside a dependency array. Start and End
// delimit the whole literal, quotes included.
type stringLiteral struct {
	Start     int
	End       int
	Value     string
	Delimiter string
}

// dependencyArray is a dependency array with the positions of its strings.
type dependencyArray struct {
	Group    string
	Literals []stringLiteral
}

// locateDependencyArrays returns project.dependencies and every
// project.optional-dependencies.<extra> array in file order, however the
// keys are spelled: table headers, dotted keys or inline tables.
func locateDependencyArrays(content []byte) ([]dependencyArray, error) {
	parser := unstable.Parser{}
	parser.Reset(content)

	var arrays []dependencyArray
	var table []string
	inArrayTable := false

	for parser.NextExpression() {
		expr := parser.Expression()
		switch expr.Kind {
		case unstable.Table:
			table = keyParts(expr.Key())
			inArrayTable = false
		case unstable.ArrayTable:
			table = nil
			inArrayTable = true
		case unstable.KeyValue:
			if inArrayTable {
				continue
			}
			path := append(append([]string{}, table...), keyParts(expr.Key())...)
			arrays = collectArrays(content, arrays, path, expr.Value())
		default:
		}
	}
	if err := parser.Error(); err != nil {
		return nil, fmt.Errorf("unable to parse TOML: %w", err)
	}
	return arrays, nil
}

func collectArrays(content []byte, arrays []dependencyArray, path []string, value *unstable.Node) []dependencyArray {
	switch value.Kind {
	case unstable.InlineTable:
		children := value.Children()
		for children.Next() {
			child := children.Node()
			if child.Kind != unstable.KeyValue {
				continue
			}
			childPath := append(append([]string{}, path...), keyParts(child.Key())...)
			arrays = collectArrays(content, arrays, childPath, child.Value())
		}
	case unstable.Array:
		group, ok := groupFor(path)
		if !ok {
			return arrays
		}
		array := dependencyArray{Group: group}
		items := value.Children()
		for items.Next() {
			item := items.Node()
			if item.Kind != unstable.String {
				continue
			}
			array.Literals = append(array.Literals, newStringLiteral(content, item))
		}
		arrays = append(arrays, array)
	default:
	}
	return arrays
}

func newStringLiteral(content []byte, node *unstable.Node) stringLiteral {
	start := int(node.Raw.Offset)
	end := start + int(node.Raw.Length)
	raw := string(content[start:end])

	delimiter := raw[:1]
	if len(raw) >= 6 && (raw[:3] == `"""` || raw[:3] == `'''`) { //nolint:mnd // two triple quotes
		delimiter = raw[:3]
	}
	return stringLiteral{Start: start, End: end, Value: string(node.Data), Delimiter: delimiter}
}

func keyParts(it unstable.Iterator) []string {
	var parts []string
	for it.Next() {
		parts = append(parts, string(it.Node().Data))
	}
	return parts
}

// groupFor maps a full key path to the group name used by entities.DependencyEntry.
func groupFor(path []string) (string, bool) {
	if len(path) < 2 || path[0] != tableProject {
		return "", false
	}
	switch {
	case len(path) == 2 && path[1] == groupDependencies:
		return groupDependencies, true
	case len(path) == 3 && path[1] == groupOptional: //nolint:mnd // project.optional-dependencies.<extra>
		return groupOptional + "." + path[2], true
	default:
		return "", false
	}
}
