package relation

import "strings"

const nameSeparator = "."

// SplitName splits a fully-qualified relation name into its namespace and
// simple name at the last '.'.
//
// Without a usable separator both parts are the whole identifier:
//
//	SplitName("colors.AnimalColor") // "colors", "AnimalColor"
//	SplitName("AnimalColor")        // "AnimalColor", "AnimalColor"
//	SplitName("colors.")            // "colors", "colors."
func SplitName(fqn string) (namespace, simple string) {
	namespace, simple = fqn, fqn
	i := strings.LastIndex(fqn, nameSeparator)
	if i > 0 {
		namespace = fqn[:i]
		if i < len(fqn)-1 {
			simple = fqn[i+1:]
		}
	}
	return namespace, simple
}
