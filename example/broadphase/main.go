// Package main runs a scene of boxes bouncing in a closed room through the
// broad phase, then culls and picks them with the tree.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/akmonengine/bvh"
	"github.com/akmonengine/bvh/config"
	"github.com/akmonengine/bvh/geom"
	"github.com/akmonengine/bvh/internal/logger"
)

const (
	roomSize = 100.0
	dt       = 1.0 / 60.0
)

type body struct {
	name     string
	proxy    bvh.ProxyID
	position mgl64.Vec3
	velocity mgl64.Vec3
	half     mgl64.Vec3
}

func (b *body) aabb() geom.AABB {
	return geom.NewAABB(b.position, b.half)
}

// step integrates the body and bounces it off the walls of the room
func (b *body) step() mgl64.Vec3 {
	previous := b.position
	b.position = b.position.Add(b.velocity.Mul(dt))

	for axis := 0; axis < 3; axis++ {
		if b.position[axis]-b.half[axis] < 0 && b.velocity[axis] < 0 ||
			b.position[axis]+b.half[axis] > roomSize && b.velocity[axis] > 0 {
			b.velocity[axis] = -b.velocity[axis]
		}
	}

	return b.position.Sub(previous)
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	count := flag.Int("bodies", 500, "number of bodies")
	steps := flag.Int("steps", 300, "number of simulation steps")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)
	defer log.Sync()

	log.Info("=== BVH broad phase ===", zap.Int("bodies", *count), zap.Int("steps", *steps))

	opts := append(cfg.Tree.Options(), bvh.WithLogger(log))
	bp := bvh.NewBroadPhase[*body](opts...)

	beginCount, endCount := 0, 0
	bp.Subscribe(bvh.PAIR_BEGIN, func(bvh.PairEvent) { beginCount++ })
	bp.Subscribe(bvh.PAIR_END, func(bvh.PairEvent) { endCount++ })

	rng := rand.New(rand.NewSource(*seed))
	bodies := make([]*body, *count)
	for i := range bodies {
		b := &body{
			name:     fmt.Sprintf("box-%d", i),
			position: mgl64.Vec3{rng.Float64() * roomSize, rng.Float64() * roomSize, rng.Float64() * roomSize},
			velocity: mgl64.Vec3{rng.NormFloat64() * 5, rng.NormFloat64() * 5, rng.NormFloat64() * 5},
			half:     mgl64.Vec3{0.5 + rng.Float64(), 0.5 + rng.Float64(), 0.5 + rng.Float64()},
		}
		b.proxy = bp.CreateProxy(b.aabb(), b)
		bodies[i] = b
	}

	tree := bp.Tree()
	for step := 1; step <= *steps; step++ {
		for _, b := range bodies {
			displacement := b.step()
			if err := bp.MoveProxy(b.proxy, b.aabb(), displacement); err != nil {
				log.Fatal("move failed", zap.String("body", b.name), zap.Error(err))
			}
		}

		moved := bp.MoveCount()
		pairs := 0
		bp.UpdatePairs(func(a, b *body) {
			if a.aabb().Overlaps(b.aabb()) {
				pairs++
			}
		})

		if step%60 == 0 {
			log.Info("step",
				zap.Int("step", step),
				zap.Int("moved", moved),
				zap.Int("touching", pairs),
				zap.Int("activePairs", bp.ActivePairCount()),
				zap.Int("height", tree.Height()),
				zap.Int("maxBalance", tree.MaxBalance()),
				zap.Float64("areaRatio", tree.AreaRatio()))

			if err := tree.Validate(); err != nil {
				log.Fatal("tree is inconsistent", zap.Error(err))
			}
		}
	}
	log.Info("pair events", zap.Int("begin", beginCount), zap.Int("end", endCount))

	// Camera in a corner looking at the center of the room
	proj := mgl64.Perspective(mgl64.DegToRad(45), 16.0/9.0, 0.1, 500)
	view := mgl64.LookAtV(mgl64.Vec3{-20, roomSize / 2, -20}, mgl64.Vec3{roomSize / 2, roomSize / 2, roomSize / 2}, mgl64.Vec3{0, 1, 0})
	frustum := geom.NewFrustumFromMatrix(proj.Mul4(view))

	visible := 0
	tree.QueryFrustum(frustum, func(bvh.ProxyID) bool {
		visible++
		return true
	})
	log.Info("frustum cull", zap.Int("visible", visible), zap.Int("total", len(bodies)))

	// Pick along the diagonal of the room: keep the closest exact hit
	start, end := mgl64.Vec3{0, 0, 0}, mgl64.Vec3{roomSize, roomSize, roomSize}
	var picked *body
	tree.RayCastSegment(start, end, func(input bvh.RayCastInput, proxyID bvh.ProxyID) float64 {
		b, err := tree.UserData(proxyID)
		if err != nil {
			return -1
		}

		ray := geom.Ray{Origin: input.Start, Direction: input.End.Sub(input.Start)}
		hit, fraction := ray.HitAABB(b.aabb(), 0, input.MaxFraction)
		if !hit {
			return -1
		}
		if fraction == 0 {
			// Start inside the box, stop at once
			picked = b
			return 0
		}

		picked = b
		return fraction
	})
	if picked != nil {
		log.Info("ray pick", zap.String("body", picked.name), zap.Float64s("position", picked.position[:]))
	} else {
		log.Info("ray pick", zap.String("body", "none"))
	}

	heightBefore, ratioBefore := tree.Height(), tree.AreaRatio()
	if err := tree.RebuildBottomUp(); err != nil {
		log.Fatal("rebuild failed", zap.Error(err))
	}
	log.Info("rebuild",
		zap.Int("heightBefore", heightBefore),
		zap.Int("heightAfter", tree.Height()),
		zap.Float64("areaRatioBefore", ratioBefore),
		zap.Float64("areaRatioAfter", tree.AreaRatio()))

	// Recenter the world on the first body
	origin := bodies[0].position
	tree.ShiftOrigin(origin)
	for _, b := range bodies {
		b.position = b.position.Sub(origin)
	}
	if err := tree.Validate(); err != nil {
		log.Fatal("tree is inconsistent after origin shift", zap.Error(err))
	}

	log.Info("done")
}
