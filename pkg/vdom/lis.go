package vdom

// getSequence returns the indices of a longest strictly increasing
// subsequence of arr, ignoring zero entries. Zero marks a new node that has
// no old counterpart.
func getSequence(arr []int) []int {
	p := make([]int, len(arr))
	result := make([]int, 0, len(arr))
	for i, v := range arr {
		if v == 0 {
			continue
		}
		if n := len(result); n > 0 && arr[result[n-1]] < v {
			p[i] = result[n-1]
			result = append(result, i)
			continue
		}
		if len(result) == 0 {
			result = append(result, i)
			continue
		}

		// Binary search for the first tail >= v.
		lo, hi := 0, len(result)-1
		for lo < hi {
			mid := (lo + hi) / 2
			if arr[result[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if v < arr[result[lo]] {
			if lo > 0 {
				p[i] = result[lo-1]
			}
			result[lo] = i
		}
	}

	// Walk predecessors back from the last tail.
	n := len(result)
	if n == 0 {
		return result
	}
	last := result[n-1]
	for i := n - 1; i >= 0; i-- {
		result[i] = last
		last = p[last]
	}
	return result
}
