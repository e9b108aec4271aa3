package game

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Control state machine", func() {
	states := []RunningState{RunningStatePlaying, RunningStatePaused, RunningStateStopped}

	DescribeTable("transitions from every state",
		func(ev Event, expected func(RunningState) RunningState) {
			for _, s := range states {
				Expect(Transition(s, ev)).To(Equal(expected(s)), "from %v on %v", s, ev)
			}
		},
		Entry("resume plays", EventResume, func(RunningState) RunningState { return RunningStatePlaying }),
		Entry("pause pauses", EventPause, func(RunningState) RunningState { return RunningStatePaused }),
		Entry("quit stops", EventQuit, func(RunningState) RunningState { return RunningStateStopped }),
		Entry("recolor keeps the state", EventRecolor, func(s RunningState) RunningState { return s }),
		Entry("none keeps the state", EventNone, func(s RunningState) RunningState { return s }),
	)

	DescribeTable("maps keys during the fight",
		func(key byte, ev Event) {
			Expect(ControlEvent(key)).To(Equal(ev))
		},
		Entry("c", byte('c'), EventRecolor),
		Entry("space", byte(' '), EventResume),
		Entry("s", byte('s'), EventPause),
		Entry("q", byte('q'), EventQuit),
		Entry("r is ignored while fighting", byte('r'), EventNone),
		Entry("unknown key", byte('x'), EventNone),
		Entry("zero byte", byte(0), EventNone),
	)

	DescribeTable("maps keys in the restart prompt",
		func(key byte, ev Event) {
			Expect(PromptEvent(key)).To(Equal(ev))
		},
		Entry("r", byte('r'), EventRestart),
		Entry("q", byte('q'), EventQuit),
		Entry("c is ignored", byte('c'), EventNone),
		Entry("space is ignored", byte(' '), EventNone),
	)

	It("names the states", func() {
		Expect(RunningStatePlaying.String()).To(Equal("playing"))
		Expect(RunningStatePaused.String()).To(Equal("paused"))
		Expect(RunningStateStopped.String()).To(Equal("stopped"))
		Expect(EventRecolor.String()).To(Equal("recolor"))
	})
})

var _ = Describe("Restart prompt", func() {
	It("quits after ignoring unknown keys", func() {
		v, err := AwaitVerdict(&scriptedInput{reads: []byte{'x', 'q'}})
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(VerdictQuit))
	})

	It("restarts after ignoring unknown keys", func() {
		v, err := AwaitVerdict(&scriptedInput{reads: []byte{'z', 'r'}})
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(VerdictRestart))
	})

	It("ignores the fight keys", func() {
		in := &scriptedInput{reads: []byte{'c', ' ', 's', 'r', 'q'}}
		v, err := AwaitVerdict(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(VerdictRestart))
		Expect(in.reads).To(Equal([]byte{'q'}))
	})

	It("propagates read errors", func() {
		_, err := AwaitVerdict(&scriptedInput{reads: []byte{'x'}})
		Expect(err).To(HaveOccurred())
	})
})
