package interp_test

import (
	"context"
	"os"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_commandNotFound(t *testing.T) {
	ts := newTestShell(t)

	assert.Equal(t, 127, ts.run("nosuchcmd"))
	assert.Contains(t, ts.stderr.String(), "not found")
}

func TestRun_commandNotExecutable(t *testing.T) {
	ts := newTestShell(t)
	require.NoError(t, afero.WriteFile(ts.fs, "/bin/noexec", []byte("data"), 0o644))

	assert.Equal(t, 126, ts.run("noexec"))
	assert.Contains(t, ts.stderr.String(), "permission denied")
}

func TestRun_externalSeesEnvironment(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`export FOO=bar; deploy --all`)

	require.Len(t, ts.spawner.plans, 1)
	plan := ts.spawner.plans[0]
	assert.Equal(t, "/bin/deploy", plan.Path)
	assert.Equal(t, []string{"deploy", "--all"}, plan.Args)
	assert.Equal(t, "/home/user", plan.Dir)
	assert.Contains(t, plan.Env, "FOO=bar")
	assert.Contains(t, plan.Env, "PATH=/bin")
}

func TestRun_commandScopedAssignment(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`LANG=C deploy; echo "after=${LANG:-unset}"`)

	require.Len(t, ts.spawner.plans, 1)
	assert.Contains(t, ts.spawner.plans[0].Env, "LANG=C")
	assert.Equal(t, "after=unset\n", ts.stdout.String())
}

func TestRun_outputRedirection(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`echo hello > out.txt; echo again >> out.txt`)
	assert.Equal(t, "hello\nagain\n", readFile(t, ts.fs, "/home/user/out.txt"))
	assert.Equal(t, "", ts.stdout.String())
}

func TestRun_inputRedirection(t *testing.T) {
	ts := newTestShell(t)
	require.NoError(t, afero.WriteFile(ts.fs, "/home/user/in.txt", []byte("contents\n"), 0o644))

	ts.run(`cat < in.txt`)
	assert.Equal(t, "contents\n", ts.stdout.String())
}

func TestRun_noclobber(t *testing.T) {
	ts := newTestShell(t)
	require.NoError(t, afero.WriteFile(ts.fs, "/home/user/out.txt", []byte("old\n"), 0o644))

	status := ts.run(`set -C; echo new > out.txt`)
	assert.Equal(t, 1, status)
	assert.Contains(t, ts.stderr.String(), "cannot overwrite")
	assert.Equal(t, "old\n", readFile(t, ts.fs, "/home/user/out.txt"))

	ts.run(`echo new >| out.txt`)
	assert.Equal(t, "new\n", readFile(t, ts.fs, "/home/user/out.txt"))
}

func TestRun_dupRedirection(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`echo oops >&2`)
	assert.Equal(t, "", ts.stdout.String())
	assert.Equal(t, "oops\n", ts.stderr.String())
}

func TestRun_heredoc(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`
x=world
cat <<EOF
hello $x
EOF
`)
	assert.Equal(t, "hello world\n", ts.stdout.String())
}

func TestRun_heredocStripTabs(t *testing.T) {
	ts := newTestShell(t)

	ts.run("cat <<-EOF\n\tindented\n\tEOF\n")
	assert.Equal(t, "indented\n", ts.stdout.String())
}

func TestRun_pipeline(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`echo through the pipe | cat`)
	assert.Equal(t, "through the pipe\n", ts.stdout.String())

	// A pipeline's status is the status of its last command.
	assert.Equal(t, 3, ts.run(`echo hi | fail3`))
	assert.Equal(t, 0, ts.run(`fail3 | cat`))
}

func TestRun_pipelineIsolation(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`x=outer; x=inner | cat; echo $x`)
	assert.Equal(t, "outer\n", ts.stdout.String())
}

func TestRun_execRedirection(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`exec > log.txt`)
	ts.run(`echo recorded`)
	assert.Equal(t, "recorded\n", readFile(t, ts.fs, "/home/user/log.txt"))
	assert.Equal(t, "", ts.stdout.String())
}

func TestRun_execCommand(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run(`exec fail3; echo never`)
	assert.Equal(t, 3, status)
	assert.True(t, ts.sh.Exited())
	assert.Equal(t, "", ts.stdout.String())
}

func TestRun_setOptions(t *testing.T) {
	ts := newTestShell(t)

	// errexit stops on the first failing command.
	status := ts.run(`set -e; fail3; echo unreachable`)
	assert.Equal(t, 3, status)
	assert.Equal(t, "", ts.stdout.String())
}

func TestRun_errexitSparesConditions(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run(`set -e; if fail3; then echo yes; else echo no; fi; echo ok`)
	assert.Equal(t, 0, status)
	assert.Equal(t, "no\nok\n", ts.stdout.String())

	ts.stdout.Reset()
	status = ts.run(`fail3 || true; echo still here`)
	assert.Equal(t, 0, status)
	assert.Equal(t, "still here\n", ts.stdout.String())
}

func TestRun_nounset(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run(`set -u; echo $undefined; echo after`)
	assert.Equal(t, 1, status)
	assert.Equal(t, "", ts.stdout.String())
	assert.Contains(t, ts.stderr.String(), "undefined")
}

func TestRun_xtrace(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`set -x`)
	ts.run(`x=1 echo hi`)
	assert.Equal(t, "+ x=1 echo hi\n", ts.stderr.String())
}

func TestRun_verbose(t *testing.T) {
	ts := newTestShell(t)

	// set -v echoes source to stderr as it is read.
	ts.run(`set -v`)
	ts.run(`eval 'echo hi'`)
	assert.Equal(t, "hi\n", ts.stdout.String())
	assert.Equal(t, "echo hi\n", ts.stderr.String())
}

func TestRun_shift(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`set -- a b c; shift; echo "$1 $#"; shift 2; echo $#`)
	assert.Equal(t, "b 2\n0\n", ts.stdout.String())

	assert.Equal(t, 1, ts.run(`shift 5`))
	assert.Contains(t, ts.stderr.String(), "shift")
}

func TestRun_readonly(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run(`readonly r=1; r=2; echo never`)
	assert.Equal(t, 1, status)
	assert.Equal(t, "", ts.stdout.String())
	assert.Contains(t, ts.stderr.String(), "readonly")
}

func TestRun_unset(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`x=1; unset x; echo ${x:-gone}`)
	assert.Equal(t, "gone\n", ts.stdout.String())

	ts.stdout.Reset()
	ts.run(`f() { echo hi; }; unset -f f; f; echo $?`)
	assert.Contains(t, ts.stdout.String(), "127")
}

func TestRun_umask(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`umask`)
	assert.Equal(t, "0022\n", ts.stdout.String())

	ts.stdout.Reset()
	ts.run(`umask 027; umask`)
	assert.Equal(t, "0027\n", ts.stdout.String())
}

func TestRun_umaskAppliesToCreatedFiles(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`umask 077; echo secret > private.txt`)
	info, err := ts.fs.Stat("/home/user/private.txt")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRun_cdAndPwd(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`cd /bin; pwd`)
	assert.Equal(t, "/bin\n", ts.stdout.String())

	ts.stdout.Reset()
	ts.run(`cd -`)
	assert.Equal(t, "/home/user\n", ts.stdout.String())

	assert.Equal(t, 1, ts.run(`cd /nowhere`))
}

func TestRun_asyncAndWait(t *testing.T) {
	ts := newTestShell(t)

	status := ts.run(`deploy & wait`)
	assert.Equal(t, 0, status)
	require.Len(t, ts.spawner.plans, 1)

	ts.run(`fail3 & wait $!`)
	assert.Equal(t, 3, ts.sh.LastStatus())

	// Waiting on an unknown job reports 127.
	assert.Equal(t, 127, ts.run(`wait 99`))
}

func TestRun_asyncJobID(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`deploy & echo $!; wait`)
	assert.Regexp(t, `^\d+\n$`, ts.stdout.String())
}

func TestRun_exitTrap(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`trap 'echo cleanup' EXIT; echo work`)
	ts.sh.RunExitTrap(context.Background())
	assert.Equal(t, "work\ncleanup\n", ts.stdout.String())
}

func TestRun_signalTrap(t *testing.T) {
	ts := newTestShell(t)
	ch := make(chan os.Signal, 1)
	ts.sh.NotifySignals(ch)

	ts.run(`trap 'echo caught' INT`)
	ch <- syscall.SIGINT
	ts.run(`:`)
	assert.Equal(t, "caught\n", ts.stdout.String())
}

func TestRun_trapListing(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`trap 'echo bye' EXIT; trap '' TERM; trap`)
	out := ts.stdout.String()
	assert.Contains(t, out, "trap -- 'echo bye' EXIT")
	assert.Contains(t, out, "trap -- '' TERM")
}

func TestRun_trapReset(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`trap 'echo bye' EXIT; trap - EXIT`)
	ts.sh.RunExitTrap(context.Background())
	assert.Equal(t, "", ts.stdout.String())
}

func TestRun_printf(t *testing.T) {
	ts := newTestShell(t)

	ts.run(`printf '%s=%d\n' a 1 b 2`)
	assert.Equal(t, "a=1\nb=2\n", ts.stdout.String())

	ts.stdout.Reset()
	ts.run(`printf '%05.1f|%x\n' 3.14159 255`)
	assert.Equal(t, "003.1|ff\n", ts.stdout.String())
}

func TestRun_testBuiltin(t *testing.T) {
	ts := newTestShell(t)
	require.NoError(t, afero.WriteFile(ts.fs, "/home/user/file.txt", []byte("x"), 0o644))

	assert.Equal(t, 0, ts.run(`test abc = abc`))
	assert.Equal(t, 1, ts.run(`test abc = def`))
	assert.Equal(t, 0, ts.run(`[ 3 -lt 10 ]`))
	assert.Equal(t, 0, ts.run(`[ -f file.txt ]`))
	assert.Equal(t, 1, ts.run(`[ -d file.txt ]`))
	assert.Equal(t, 0, ts.run(`[ -n abc -a 1 -eq 1 ]`))
	assert.Equal(t, 0, ts.run(`[ ! -e missing ]`))
	assert.Equal(t, 2, ts.run(`[ 1 -eq 1`))
}
