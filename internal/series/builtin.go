package series

import (
	"io"
	"sort"
	"strings"
)

// partitionSpeedups is the reference partition speedup table measured on the
// C implementation for sizes 2^10 through 2^30.
const partitionSpeedups = `partition,array_size,speedup
partition_lomuto,1024,1.1076923076923078
partition_lomuto,32768,0.993212669683258
partition_lomuto,1048576,0.9838860652757471
partition_lomuto,33554432,0.940361428314591
partition_lomuto,1073741824,0.8642569603578659
partition_median_of_three,1024,1.0
partition_median_of_three,32768,1.123706338939198
partition_median_of_three,1048576,1.0986275490359505
partition_median_of_three,33554432,0.9478567931382018
partition_median_of_three,1073741824,0.900335894803734
partition_hoare,1024,1.3257575757575757
partition_hoare,32768,1.1376930660532367
partition_hoare,1048576,1.0915344817783843
partition_hoare,33554432,0.9354043613380846
partition_hoare,1073741824,0.8952447858804718
`

var builtins = map[string]string{
	"partition": partitionSpeedups,
}

// Builtin returns the CSV text of a baked-in dataset.
func Builtin(name string) (io.Reader, bool) {
	s, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return strings.NewReader(s), true
}

// BuiltinNames lists the baked-in datasets in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
