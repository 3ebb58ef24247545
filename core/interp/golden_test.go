package interp_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
)

// TestGolden runs complete scripts and compares their standard output
// against fixtures in testdata/golden.
func TestGolden(t *testing.T) {
	cases := map[string]string{
		"fizzbuzz": `
i=1
while [ $i -le 15 ]; do
	if [ $((i % 15)) -eq 0 ]; then
		echo fizzbuzz
	elif [ $((i % 3)) -eq 0 ]; then
		echo fizz
	elif [ $((i % 5)) -eq 0 ]; then
		echo buzz
	else
		echo $i
	fi
	i=$((i + 1))
done
`,
		"parameters": `
set -- alpha beta gamma
echo "count=$#"
echo "all=$*"
echo "first=$1"
shift
echo "first=$1"
name=world
echo "hello, ${name}!"
echo "${missing:-default}"
echo "${name%ld}"
echo "len=${#name}"
`,
		"functions": `
indent() {
	printf '  %s\n' "$1"
}
report() {
	echo "$1:"
	shift
	for item; do
		indent "$item"
	done
}
report fruits apple pear
report tools hammer
`,
	}

	for tn, src := range cases {
		t.Run(tn, func(t *testing.T) {
			ts := newTestShell(t)
			status := ts.run(src)
			assert.Equal(t, 0, status)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithTestNameForDir(true),
			)
			g.Assert(t, tn, ts.stdout.Bytes())
		})
	}
}
