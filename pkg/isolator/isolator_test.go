//go:build unix

package isolator_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/nicholas-fedor/commandhook/pkg/isolator"
	"github.com/nicholas-fedor/commandhook/pkg/runner"
	"github.com/nicholas-fedor/commandhook/pkg/types"
)

func writeScript(name, body string) string {
	path := filepath.Join(ginkgo.GinkgoT().TempDir(), name)
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return path
}

func newCommand(path string, timeout time.Duration) *types.Command {
	command, err := types.NewCommand(path, nil, timeout)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return command
}

var _ = ginkgo.Describe("CommandIsolator", func() {
	var ctx context.Context

	ginkgo.BeforeEach(func() {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		ginkgo.DeferCleanup(cancel)
	})

	ginkgo.Describe("with disabled phases", func() {
		ginkgo.It("resolves prepare and cleanup immediately", func() {
			iso := isolator.New(isolator.Config{}, runner.New())

			prepare := iso.Prepare("c1", types.Record{})
			gomega.Expect(prepare.Done()).To(gomega.BeClosed())

			launchInfo, err := prepare.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(launchInfo).To(gomega.BeNil())

			cleanup := iso.Cleanup("c1")
			gomega.Expect(cleanup.Done()).To(gomega.BeClosed())
			gomega.Expect(iso.Pending()).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Prepare", func() {
		ginkgo.It("resolves with the launch info written by the command", func() {
			script := writeScript("prepare", `cat >/dev/null; echo '{"environment":[{"name":"SLOT","value":"3"}],"pre_exec_commands":[{"value":"mount /data"}]}'`)
			iso := isolator.New(isolator.Config{Prepare: newCommand(script, 2*time.Second)}, runner.New())

			launchInfo, err := iso.Prepare("c1", types.Record{"cpus": 1}).Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(launchInfo).NotTo(gomega.BeNil())
			gomega.Expect(launchInfo.Environment.Strings()).To(gomega.Equal([]string{"SLOT=3"}))
			gomega.Expect(launchInfo.PreExecCommands).To(gomega.HaveLen(1))
			gomega.Expect(launchInfo.PreExecCommands[0].IsShell()).To(gomega.BeTrue())
		})

		ginkgo.It("resolves with nil when the command writes nothing", func() {
			script := writeScript("prepare-empty", `cat >/dev/null`)
			iso := isolator.New(isolator.Config{Prepare: newCommand(script, 2*time.Second)}, runner.New())

			launchInfo, err := iso.Prepare("c1", nil).Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(launchInfo).To(gomega.BeNil())
		})

		ginkgo.It("rejects with a timeout and leaves no process behind", func() {
			pidFile := filepath.Join(ginkgo.GinkgoT().TempDir(), "pid")
			script := writeScript("prepare-hang", "echo $$ > "+pidFile+"\nsleep 30")
			iso := isolator.New(
				isolator.Config{Prepare: newCommand(script, 500*time.Millisecond)},
				runner.New(runner.WithGracePeriod(300*time.Millisecond)),
			)

			start := time.Now()
			result := iso.Prepare("c1", types.Record{})
			gomega.Expect(result.Done()).NotTo(gomega.BeClosed())

			_, err := result.Get(ctx)
			gomega.Expect(err).To(gomega.MatchError(types.ErrTimedOut))
			gomega.Expect(time.Since(start)).To(gomega.BeNumerically("<", time.Second))

			iso.Wait()
			gomega.Expect(iso.Pending()).To(gomega.BeEmpty())

			raw, err := os.ReadFile(pidFile)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Eventually(func() bool {
				return errors.Is(syscall.Kill(pid, 0), syscall.ESRCH)
			}).WithTimeout(2 * time.Second).Should(gomega.BeTrue())
		})

		ginkgo.It("rejects undecodable output", func() {
			script := writeScript("prepare-bad", `cat >/dev/null; echo '{"pre_exec_commands":[{"arguments":["x"]}]}'`)
			iso := isolator.New(isolator.Config{Prepare: newCommand(script, 2*time.Second)}, runner.New())

			_, err := iso.Prepare("c1", types.Record{}).Get(ctx)
			gomega.Expect(err).To(gomega.MatchError(types.ErrDecodeFailed))
		})

		ginkgo.It("keeps concurrent containers apart", func() {
			script := writeScript("prepare-echo", `id=$(sed 's/.*"container_id":"\([^"]*\)".*/\1/'); sleep 0.2; echo "{\"environment\":[{\"name\":\"ID\",\"value\":\"$id\"}]}"`)
			iso := isolator.New(isolator.Config{Prepare: newCommand(script, 2*time.Second)}, runner.New())

			first := iso.Prepare("container-a", types.Record{})
			second := iso.Prepare("container-b", types.Record{})

			gomega.Expect(iso.Pending()).To(gomega.Equal([]isolator.Operation{
				{ContainerID: "container-a", Point: types.PointPrepare},
				{ContainerID: "container-b", Point: types.PointPrepare},
			}))

			a, err := first.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			b, err := second.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(a.Environment.Strings()).To(gomega.Equal([]string{"ID=container-a"}))
			gomega.Expect(b.Environment.Strings()).To(gomega.Equal([]string{"ID=container-b"}))

			iso.Wait()
			gomega.Expect(iso.Pending()).To(gomega.BeEmpty())
		})

		ginkgo.It("runs distinct commands concurrently", func() {
			scriptA := writeScript("prepare-a", `cat >/dev/null; sleep 0.3; echo '{"environment":[{"name":"SOURCE","value":"a"}]}'`)
			scriptB := writeScript("prepare-b", `cat >/dev/null; sleep 0.3; echo '{"environment":[{"name":"SOURCE","value":"b"}]}'`)
			isoA := isolator.New(isolator.Config{Prepare: newCommand(scriptA, 2*time.Second)}, runner.New())
			isoB := isolator.New(isolator.Config{Prepare: newCommand(scriptB, 2*time.Second)}, runner.New())

			start := time.Now()
			first := isoA.Prepare("c1", types.Record{})
			second := isoB.Prepare("c1", types.Record{})

			a, err := first.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			b, err := second.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(time.Since(start)).To(gomega.BeNumerically("<", 600*time.Millisecond))
			gomega.Expect(a.Environment.Strings()).To(gomega.Equal([]string{"SOURCE=a"}))
			gomega.Expect(b.Environment.Strings()).To(gomega.Equal([]string{"SOURCE=b"}))
		})

		ginkgo.It("runs prepare and cleanup commands side by side", func() {
			prepare := writeScript("prepare-slow", `cat >/dev/null; sleep 0.3; echo '{}'`)
			cleanup := writeScript("cleanup-slow", `cat >/dev/null; sleep 0.3`)
			iso := isolator.New(isolator.Config{
				Prepare: newCommand(prepare, 2*time.Second),
				Cleanup: newCommand(cleanup, 2*time.Second),
			}, runner.New())

			prepared := iso.Prepare("c2", types.Record{})
			cleaned := iso.Cleanup("c1")

			gomega.Expect(iso.Pending()).To(gomega.Equal([]isolator.Operation{
				{ContainerID: "c1", Point: types.PointCleanup},
				{ContainerID: "c2", Point: types.PointPrepare},
			}))

			launchInfo, err := prepared.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(launchInfo).NotTo(gomega.BeNil())

			_, err = cleaned.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("stops listing an operation as pending once its future settles", func() {
			script := writeScript("prepare-fast", `cat >/dev/null; echo '{}'`)
			iso := isolator.New(isolator.Config{Prepare: newCommand(script, 2*time.Second)}, runner.New())

			_, err := iso.Prepare("c1", types.Record{}).Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(iso.Pending()).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("Cleanup", func() {
		ginkgo.It("resolves when the command exits 0 and ignores its output", func() {
			script := writeScript("cleanup", `cat >/dev/null; echo "not json"`)
			iso := isolator.New(isolator.Config{Cleanup: newCommand(script, 2*time.Second)}, runner.New())

			_, err := iso.Cleanup("c1").Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
		})

		ginkgo.It("rejects a non-zero exit", func() {
			script := writeScript("cleanup-fail", `exit 7`)
			iso := isolator.New(isolator.Config{Cleanup: newCommand(script, 2*time.Second)}, runner.New())

			_, err := iso.Cleanup("c1").Get(ctx)
			gomega.Expect(err).To(gomega.MatchError(types.ErrNonZeroExit))

			var invocationErr *types.InvocationError
			gomega.Expect(errors.As(err, &invocationErr)).To(gomega.BeTrue())
			gomega.Expect(invocationErr.ExitCode).To(gomega.Equal(7))
		})
	})

	ginkgo.Describe("WithMaxConcurrency", func() {
		ginkgo.It("runs queued operations one at a time", func() {
			script := writeScript("cleanup-slow", `sleep 0.3`)
			iso := isolator.New(
				isolator.Config{Cleanup: newCommand(script, 400*time.Millisecond)},
				runner.New(),
				isolator.WithMaxConcurrency(1),
			)

			start := time.Now()
			first := iso.Cleanup("c1")
			second := iso.Cleanup("c2")

			_, err := first.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = second.Get(ctx)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(time.Since(start)).To(gomega.BeNumerically(">=", 600*time.Millisecond))
		})
	})
})
