//go:build unix

package runner_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/commandhook/pkg/runner"
	"github.com/nicholas-fedor/commandhook/pkg/types"
)

// writeScript creates an executable shell script in a temporary directory.
func writeScript(name, body string) string {
	path := filepath.Join(ginkgo.GinkgoT().TempDir(), name)
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return path
}

// newCommand builds a descriptor and fails the test on error.
func newCommand(path string, timeout time.Duration, args ...string) *types.Command {
	command, err := types.NewCommand(path, args, timeout)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return command
}

// processGone reports whether pid no longer runs (missing or zombie).
func processGone(pid int) bool {
	if err := syscall.Kill(pid, 0); errors.Is(err, syscall.ESRCH) {
		return true
	}

	stat, err := os.ReadFile(filepath.Join("/proc", strconv.Itoa(pid), "stat"))
	if err != nil {
		return false
	}

	// The state field follows the parenthesised command name.
	fields := strings.Fields(string(stat[bytes.LastIndexByte(stat, ')')+1:]))

	return len(fields) > 0 && fields[0] == "Z"
}

var _ = ginkgo.Describe("Runner", func() {
	var r *runner.Runner

	ginkgo.BeforeEach(func() {
		r = runner.New(runner.WithGracePeriod(300 * time.Millisecond))
	})

	ginkgo.It("echoes the payload written to stdin", func() {
		script := writeScript("echo", "cat")
		payload := []byte(`[{"key":"env","value":"prod"}]`)

		outcome := r.Run(newCommand(script, 2*time.Second), payload)

		gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusSuccess))
		gomega.Expect(outcome.ExitCode).To(gomega.Equal(0))
		gomega.Expect(outcome.Stdout).To(gomega.Equal(payload))
	})

	ginkgo.It("passes fixed arguments and never the payload on argv", func() {
		script := writeScript("args", `echo "$#:$*"`)

		outcome := r.Run(newCommand(script, 2*time.Second, "--mode", "labels"), []byte(`{"large":"payload"}`))

		gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusSuccess))
		gomega.Expect(string(outcome.Stdout)).To(gomega.Equal("2:--mode labels\n"))
	})

	ginkgo.It("reports non-zero exits with their output and stderr", func() {
		script := writeScript("fail", `echo '[{"key":"a"}]'; echo "broken" >&2; exit 3`)

		outcome := r.Run(newCommand(script, 2*time.Second), nil)

		gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusNonZeroExit))
		gomega.Expect(outcome.ExitCode).To(gomega.Equal(3))
		gomega.Expect(string(outcome.Stdout)).To(gomega.ContainSubstring(`"key":"a"`))
		gomega.Expect(string(outcome.Stderr)).To(gomega.Equal("broken\n"))
	})

	ginkgo.It("reports spawn failures for missing executables", func() {
		missing := filepath.Join(ginkgo.GinkgoT().TempDir(), "does-not-exist")

		outcome := r.Run(newCommand(missing, time.Second), []byte("{}"))

		gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusSpawnFailed))
		gomega.Expect(outcome.Stdout).To(gomega.BeNil())
		gomega.Expect(outcome.Err).To(gomega.HaveOccurred())
	})

	ginkgo.It("tolerates commands that ignore a large input", func() {
		script := writeScript("ignore", `echo '[]'`)
		payload := bytes.Repeat([]byte("x"), 1<<20)

		outcome := r.Run(newCommand(script, 2*time.Second), payload)

		gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusSuccess))
		gomega.Expect(string(outcome.Stdout)).To(gomega.Equal("[]\n"))
	})

	ginkgo.It("kills a command that exceeds its timeout within the grace period", func() {
		pidFile := filepath.Join(ginkgo.GinkgoT().TempDir(), "pid")
		script := writeScript("sleep-forever", "echo partial\nsleep 30 &\necho $! > "+pidFile+"\nwait")
		timeout := 500 * time.Millisecond

		start := time.Now()
		outcome := r.Run(newCommand(script, timeout), nil)
		elapsed := time.Since(start)

		gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusTimedOut))
		gomega.Expect(outcome.Stdout).To(gomega.BeNil())
		gomega.Expect(elapsed).To(gomega.BeNumerically("<", timeout+r.GracePeriod()+200*time.Millisecond))

		raw, err := os.ReadFile(pidFile)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		descendant, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Eventually(func() bool { return processGone(descendant) }).
			WithTimeout(2 * time.Second).
			WithPolling(20 * time.Millisecond).
			Should(gomega.BeTrue())
	})

	ginkgo.It("does not leave background descendants running after a normal exit", func() {
		pidFile := filepath.Join(ginkgo.GinkgoT().TempDir(), "pid")
		script := writeScript("daemonize", "sleep 30 </dev/null >/dev/null 2>&1 &\necho $! > "+pidFile+"\necho '[]'")

		outcome := r.Run(newCommand(script, 2*time.Second), nil)
		gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusSuccess))

		raw, err := os.ReadFile(pidFile)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		descendant, err := strconv.Atoi(strings.TrimSpace(string(raw)))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		gomega.Eventually(func() bool { return processGone(descendant) }).
			WithTimeout(2 * time.Second).
			Should(gomega.BeTrue())
	})

	ginkgo.It("caps captured output", func() {
		capped := runner.New(runner.WithMaxOutputBytes(8))
		script := writeScript("chatty", `printf '0123456789abcdef'`)

		outcome := capped.Run(newCommand(script, 2*time.Second), nil)

		gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusSuccess))
		gomega.Expect(string(outcome.Stdout)).To(gomega.Equal("01234567"))
	})

	ginkgo.It("runs concurrent invocations independently", func() {
		script := writeScript("cat", "cat")
		results := make(chan []byte, 8)

		for i := range 8 {
			go func(i int) {
				defer ginkgo.GinkgoRecover()

				outcome := r.Run(newCommand(script, 2*time.Second), []byte(strconv.Itoa(i)))
				gomega.Expect(outcome.Status).To(gomega.Equal(types.StatusSuccess))
				gomega.Expect(string(outcome.Stdout)).To(gomega.Equal(strconv.Itoa(i)))

				results <- outcome.Stdout
			}(i)
		}

		for range 8 {
			gomega.Eventually(results).WithTimeout(3 * time.Second).Should(gomega.Receive())
		}
	})
})
