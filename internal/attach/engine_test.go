package attach

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/animattach/internal/geom"
	"github.com/san-kum/animattach/internal/host"
	"github.com/san-kum/animattach/internal/scene"
)

func nearVec(want r3.Vec) OmegaMatcher {
	return WithTransform(func(v r3.Vec) float64 { return r3.Norm(r3.Sub(v, want)) }, BeNumerically("<", 1e-9))
}

func outcomes(snaps []Snapshot) []Outcome {
	out := make([]Outcome, len(snaps))
	for i, s := range snaps {
		out[i] = s.Outcome
	}
	return out
}

var _ = Describe("Engine", func() {
	var (
		r *rig
		e *Engine
	)

	start := func() {
		e.Tick()
		e.BootstrapFinished()
	}

	Describe("bootstrap phases", func() {
		BeforeEach(func() {
			r = newRig(false)
			e = NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
		})

		It("moves from INIT to STARTING on the first tick", func() {
			Expect(e.Phase()).To(Equal(PhaseInit))
			snaps := e.Tick()
			Expect(snaps).To(HaveLen(1))
			Expect(snaps[0].Phase).To(Equal(PhaseInit))
			Expect(snaps[0].Outcome).To(Equal(OutcomeHeld))
			Expect(e.Phase()).To(Equal(PhaseStarting))
		})

		It("never starts or propagates without the bootstrap signal", func() {
			for i := 0; i < 10; i++ {
				r.yaw(float64(i) * 10)
				snaps := e.Tick()
				Expect(snaps[0].Outcome.Propagated()).To(BeFalse())
			}
			Expect(e.Phase()).To(Equal(PhaseStarting))
			Expect(r.body.Transform().LocalPosition()).To(Equal(r3.Vec{X: 1}))
		})

		It("defers a signal received during INIT until the INIT pass ran", func() {
			e.Signal(host.SignalBootstrapFinished)
			Expect(e.Phase()).To(Equal(PhaseInit))

			snaps := e.Tick()
			Expect(snaps[0].Outcome).To(Equal(OutcomeHeld))
			Expect(e.Phase()).To(Equal(PhaseStarted))
		})

		It("restarts at INIT on activation and keeps captured offsets", func() {
			start()
			Expect(e.Phase()).To(Equal(PhaseStarted))

			e.Signal(host.SignalActivate)
			Expect(e.Phase()).To(Equal(PhaseInit))
			Expect(e.Registry().Records()[0].Bound()).To(BeTrue())

			e.Tick()
			Expect(e.Phase()).To(Equal(PhaseStarting))
		})
	})

	Describe("kinematic dependent", func() {
		BeforeEach(func() {
			r = newRig(false)
			e = NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
		})

		It("captures the offset and follows a quarter turn of the frame", func() {
			start()
			rec := e.Registry().Records()[0]
			Expect(rec.Offset).NotTo(BeNil())
			Expect(rec.Offset.Position).To(nearVec(r3.Vec{X: 1}))
			Expect(geom.SameRotation(rec.Offset.Rotation, geom.Identity(), 1e-12)).To(BeTrue())

			r.yaw(90)
			snaps := e.Tick()
			Expect(snaps[0].Outcome).To(Equal(OutcomeKinematic))
			Expect(snaps[0].Target.Position).To(nearVec(r3.Vec{Z: -1}))
			Expect(r.body.Transform().LocalPosition()).To(nearVec(r3.Vec{Z: -1}))
			Expect(geom.SameRotation(r.body.Transform().LocalRotation(), geom.Euler(r3.Vec{Y: 90}), 1e-12)).To(BeTrue())
		})

		It("publishes the resolved node pose", func() {
			r.arm.SetLocalPose(r3.Vec{Y: 2}, geom.Euler(r3.Vec{Y: 90}))
			e.Tick()
			pos, ori, ok := r.node.Pose()
			Expect(ok).To(BeTrue())
			Expect(pos).To(nearVec(r3.Vec{Y: 2}))
			Expect(ori).To(nearVec(r3.Vec{X: 1}))
		})

		It("clears offsets while disabled and captures again afterwards", func() {
			start()
			s := DefaultSettings()
			s.Enabled = false
			e.SetSettings(s)

			snaps := e.Tick()
			Expect(snaps[0].Outcome).To(Equal(OutcomeCleared))
			Expect(e.Registry().Records()[0].Bound()).To(BeFalse())

			r.body.Transform().SetLocalPose(r3.Vec{X: 3}, geom.Identity())
			e.SetSettings(DefaultSettings())
			e.Tick()
			Expect(e.Registry().Records()[0].Offset.Position).To(nearVec(r3.Vec{X: 3}))
		})

		It("recaptures on request", func() {
			start()
			r.body.Transform().SetLocalPose(r3.Vec{X: 2}, geom.Identity())
			Expect(e.Recapture(r.body)).To(Succeed())
			e.Tick()
			Expect(e.Registry().Records()[0].Offset.Position).To(nearVec(r3.Vec{X: 2}))
			Expect(e.Recapture(nil)).To(MatchError(ErrNoDependent))
		})

		It("skips a broken chain and heals when the link returns", func() {
			start()
			r.arm.SetParent(nil)
			snaps := e.Tick()
			Expect(snaps[0].Outcome).To(Equal(OutcomeChainBroken))
			Expect(snaps[0].FrameValid).To(BeFalse())
			Expect(e.Registry().Records()[0].Bound()).To(BeTrue())

			r.arm.SetParent(r.owner.SceneTransform())
			r.yaw(90)
			snaps = e.Tick()
			Expect(snaps[0].Outcome).To(Equal(OutcomeKinematic))
			Expect(r.body.Transform().LocalPosition()).To(nearVec(r3.Vec{Z: -1}))
		})
	})

	Describe("joint-linked dependent", func() {
		var joint *scene.Joint

		BeforeEach(func() {
			r = newRig(true)
			joint = r.body.SceneJoint()
			e = NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
		})

		It("leaves the joint alone before STARTED", func() {
			e.Tick()
			Expect(joint.DriveWrites()).To(BeZero())
			Expect(joint.Free()).To(BeFalse())
		})

		It("frees every axis and rewrites every drive", func() {
			start()
			snaps := e.Tick()
			Expect(snaps[0].Outcome).To(Equal(OutcomeDriven))
			for _, ax := range host.AllAxes {
				Expect(joint.Motion(ax)).To(Equal(host.MotionFree))
			}
			for _, ch := range host.AllDrives {
				Expect(joint.Drive(ch)).To(Equal(DefaultSettings().Drive))
			}
			Expect(joint.DriveWrites()).To(Equal(len(host.AllDrives)))

			e.Tick()
			Expect(joint.DriveWrites()).To(Equal(2*len(host.AllDrives)), "drives are rewritten in full each tick")
		})

		It("points the joint at the target pose", func() {
			start()
			r.arm.SetLocalPose(r3.Vec{Y: 0.5}, geom.Euler(r3.Vec{Y: 90}))
			snaps := e.Tick()
			target := snaps[0].Target
			Expect(target.Position).To(nearVec(r3.Vec{Y: 0.5, Z: -1}))

			settled := joint.Rotation()
			Expect(geom.SameRotation(settled, target.Rotation, 1e-12)).To(BeTrue())
			Expect(joint.Goal(settled)).To(nearVec(target.Position))
			Expect(joint.ConnectedAnchor()).To(nearVec(r3.Vec{Y: 0.5}))
			Expect(joint.TargetPosition()).To(Equal(r3.Vec{}))
			Expect(snaps[0].JointAnchor).To(nearVec(joint.Anchor()))
		})

		It("does nothing without a joint and stays bound", func() {
			r.body.SetJoint(nil)
			start()
			snaps := e.Tick()
			Expect(snaps[0].Outcome).To(Equal(OutcomeNoJoint))
			Expect(e.Registry().Records()[0].Bound()).To(BeTrue())
			Expect(r.body.Transform().LocalPosition()).To(Equal(r3.Vec{X: 1}))
		})

		It("picks up drive settings changes", func() {
			start()
			s := DefaultSettings()
			s.Drive.PositionSpring = 50
			e.SetSettings(s)
			e.Tick()
			Expect(joint.Drive(host.DriveAngularYZ).PositionSpring).To(Equal(50.0))
		})
	})

	Describe("structural parent", func() {
		It("skips the record of the owner's own parent", func() {
			r = newRig(false)
			r.owner.SetParent(r.body)
			e = NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
			start()
			r.yaw(90)
			snaps := e.Tick()
			Expect(snaps[0].Outcome).To(Equal(OutcomeParentLink))
			Expect(e.Registry().Records()[0].Bound()).To(BeFalse())
			Expect(r.body.Transform().LocalPosition()).To(Equal(r3.Vec{X: 1}))
		})
	})

	Describe("frame resolution", func() {
		BeforeEach(func() {
			r = newRig(false)
		})

		It("marks a node without a transform inert", func() {
			bare := scene.NewNode("bare", nil)
			r.owner.AddNode(bare)
			b := r.addDependent("b", r3.Vec{}, host.KindNode)
			bare.Attach(b)

			e = NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
			Expect(outcomes(e.Tick())).To(Equal([]Outcome{OutcomeHeld, OutcomeInert}))
			Expect(outcomes(e.Tick())).To(Equal([]Outcome{OutcomeHeld, OutcomeInert}))
			Expect(e.Registry().Records()[1].Inert()).To(BeTrue())
		})

		It("degrades a node attachment without a node to a surface attachment", func() {
			plate := r.owner.AddTransform("plate", nil)
			plate.SetLocalPose(r3.Vec{Y: 3}, geom.Identity())
			r.owner.AddGeometry(scene.NewBox("plate", plate, r3.Vec{}, r3.Vec{X: 4, Y: 0.2, Z: 4}))
			b := r.addDependent("b", r3.Vec{Y: 3.5}, host.KindNode)
			b.SetContactPoint(r3.Vec{Y: 3.1})

			e = NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
			snaps := e.Tick()
			Expect(snaps[1].Outcome).To(Equal(OutcomeUnresolved))
			Expect(snaps[1].Kind).To(Equal(host.KindSurface))

			snaps = e.Tick()
			Expect(snaps[1].Outcome).To(Equal(OutcomeHeld))
			Expect(snaps[1].Anchor).To(Equal("plate"))
			Expect(snaps[1].Offset.Position).To(nearVec(r3.Vec{Y: 0.5}))
		})
	})

	Describe("observers and logging", func() {
		It("hands every tick's snapshots to observers", func() {
			r = newRig(false)
			var buf bytes.Buffer
			e = NewEngine(r.owner, DefaultSettings(), zerolog.New(&buf).Level(zerolog.DebugLevel))

			var seen [][]Snapshot
			e.AddObserver(ObserverFunc(func(s []Snapshot) { seen = append(seen, s) }))
			start()
			e.Tick()

			Expect(seen).To(HaveLen(2))
			Expect(seen[1][0].Tick).To(Equal(1))
			Expect(seen[1][0].Owner).To(Equal("vessel"))
			Expect(seen[1][0].Dependent).To(Equal("panel"))
			Expect(buf.String()).To(ContainSubstring("recording offset"))
		})

		It("refuses a second capture on a bound record", func() {
			r = newRig(false)
			e = NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
			e.Tick()
			rec := e.Registry().Records()[0]
			Expect(rec.Bind(geom.IdentityPose(), geom.IdentityPose())).To(MatchError(ErrAlreadyBound))
		})
	})

	Describe("editor events", func() {
		It("drops the record of a detached body before the next sync", func() {
			r = newRig(false)
			e = NewEngine(r.owner, DefaultSettings(), zerolog.Nop())
			start()

			a, ok := r.owner.Detach(r.body)
			Expect(ok).To(BeTrue())
			e.Handle(host.Event{Kind: host.EventDetached, Attachment: a})
			Expect(e.Registry().Len()).To(BeZero())

			r.owner.Attach(r.body, host.KindNode)
			r.node.Attach(r.body)
			e.Handle(host.Event{Kind: host.EventAttached, Attachment: host.Attachment{Body: r.body, Kind: host.KindNode}})
			snaps := e.Tick()
			Expect(snaps).To(HaveLen(1))
			Expect(snaps[0].Outcome).To(Equal(OutcomeKinematic))
		})
	})
})
