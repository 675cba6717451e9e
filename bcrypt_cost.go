//go:build !race

package access

func passwordHashCost() int {
	return 14
}
