package kernel

import (
	"strconv"
	"strings"
)

// Name is a hierarchical actor name: a series of tokens separated by dots,
// each optionally carrying one or more bracketed indices (e.g.
// "Cluster[2].Worker[0]"). Simulation.Spawn does not require names to take
// this shape, but applications that spawn actor pools may want to, and
// BuildName/BuildNameWithIndex/ParseName give them a consistent way to.
type Name struct {
	Tokens []NameToken
}

// NameToken is one dot-separated element of a Name.
type NameToken struct {
	ElemName string
	Index    []int
}

// ParseName parses a hierarchical name string into its tokens.
func ParseName(sname string) Name {
	parts := strings.Split(sname, ".")
	name := Name{Tokens: make([]NameToken, len(parts))}
	for i, p := range parts {
		name.Tokens[i] = parseNameToken(p)
	}
	return name
}

func parseNameToken(token string) NameToken {
	bracketsMustMatch(token)

	ts := strings.Split(token, "[")
	elemName := ts[0]

	indices := make([]int, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		index, err := strconv.Atoi(ts[i][0 : len(ts[i])-1])
		if err != nil {
			panic("name index must be an integer")
		}
		indices[i-1] = index
	}

	return NameToken{ElemName: elemName, Index: indices}
}

func bracketsMustMatch(name string) {
	depth := 0
	for _, c := range name {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				panic("name brackets must match")
			}
		}
	}
	if depth != 0 {
		panic("name brackets must match")
	}
}

// BuildName joins a parent name and an element name with a dot, or returns
// elementName unchanged if parentName is empty.
func BuildName(parentName, elementName string) string {
	if parentName == "" {
		return elementName
	}
	return parentName + "." + elementName
}

// BuildNameWithIndex builds a name for the i-th element of a pool, e.g.
// BuildNameWithIndex("Cluster", "Worker", 3) => "Cluster.Worker[3]".
func BuildNameWithIndex(parentName, elementName string, index int) string {
	return BuildName(parentName, elementName+"["+strconv.Itoa(index)+"]")
}

// BuildNameWithMultiDimensionalIndex builds a name for a multi-dimensional
// pool element, e.g. elementName "Tile" with index []int{1, 2} =>
// "Tile[1][2]".
func BuildNameWithMultiDimensionalIndex(parentName, elementName string, index []int) string {
	name := BuildName(parentName, elementName)
	for _, i := range index {
		name += "[" + strconv.Itoa(i) + "]"
	}
	return name
}
