/*
 * generator.go, part of goConf.
 *
 * Copyright 2021 Raul Mera <rmera{at}usachDOTcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package confgen

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	chem "github.com/rmera/goconf"
	"github.com/rmera/goconf/chemgraph"
	"github.com/rmera/goconf/dg"
	"github.com/rmera/goconf/mmff"
	v3 "github.com/rmera/goconf/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	embedCycles  = 100
	rngMix       = 0x9e3779b97f4a7c15
	fragSeedStep = 7919

	//at least this many embeddings are tried per molecule, if the sampling budget allows.
	minEmbeddings = 3

	//fragment conformers closer than this (aligned RMSD, A) are considered the same.
	fragmentRMSD = 0.25
)

//Generator produces conformer ensembles. A Generator can be reused for many molecules,
//but Generate calls on the same Generator are serialized. Use one Generator per
//goroutine to generate in parallel.
type Generator struct {
	mu       sync.Mutex
	settings Settings
	params   *mmff.Parameters
	fraglib  *FragmentLibrary
	log      *zap.Logger
	stage    atomic.Int32
	confs    []*v3.Matrix
	energies []float64
}

//NewGenerator returns a generator with the settings S, which are validated. It uses the default
//force field parameters and the default fragment library.
func NewGenerator(S Settings) (*Generator, error) {
	if err := S.Validate(); err != nil {
		return nil, errDecorate(err, "NewGenerator")
	}
	G := &Generator{fraglib: DefaultFragmentLibrary(), log: zap.NewNop()}
	G.settings = copySettings(S)
	return G, nil
}

func copySettings(S Settings) Settings {
	if S.RandomSeed != nil {
		S.SetSeed(*S.RandomSeed)
	}
	return S
}

//Settings returns a copy of the current settings.
func (G *Generator) Settings() Settings {
	G.mu.Lock()
	defer G.mu.Unlock()
	return copySettings(G.settings)
}

//SetSettings validates and replaces the settings.
func (G *Generator) SetSettings(S Settings) error {
	if err := S.Validate(); err != nil {
		return errDecorate(err, "SetSettings")
	}
	G.mu.Lock()
	defer G.mu.Unlock()
	G.settings = copySettings(S)
	return nil
}

//SetLogger sets the logger. A nil logger disables logging.
func (G *Generator) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	G.mu.Lock()
	defer G.mu.Unlock()
	G.log = l
}

//SetParameters sets the force field parameters. nil means the default set.
func (G *Generator) SetParameters(P *mmff.Parameters) {
	G.mu.Lock()
	defer G.mu.Unlock()
	G.params = P
}

//SetFragmentLibrary sets the library used to store and retrieve ring system conformers.
//With a nil library, Generate fails with FragmentLibraryNotSet.
func (G *Generator) SetFragmentLibrary(L *FragmentLibrary) {
	G.mu.Lock()
	defer G.mu.Unlock()
	G.fraglib = L
}

//FragmentLibrary returns the fragment library in use.
func (G *Generator) FragmentLibrary() *FragmentLibrary {
	G.mu.Lock()
	defer G.mu.Unlock()
	return G.fraglib
}

//Stage returns the stage the generator is in. It doesn't block while Generate runs.
func (G *Generator) Stage() Stage {
	return Stage(G.stage.Load())
}

func (G *Generator) setStage(r *run, s Stage) {
	G.stage.Store(int32(s))
	r.log.Debug("stage", zap.Stringer("stage", s), zap.Duration("elapsed", time.Since(r.start)))
}

/***Per-call state***/

//run holds the state of one Generate or PrepareFragments call.
type run struct {
	ctx      context.Context
	S        Settings
	start    time.Time
	deadline time.Time
	seed     uint64
	rng      *rand.Rand
	log      *zap.Logger

	top     *chem.Topology
	graph   *chemgraph.Topology
	ff      *mmff.ForceField
	fixed   []int
	isFixed []bool
	input   *v3.Matrix
}

func (G *Generator) newRun(ctx context.Context, top *chem.Topology) *run {
	if ctx == nil {
		ctx = context.Background()
	}
	S := copySettings(G.settings)
	r := &run{ctx: ctx, S: S, start: time.Now(), top: top}
	if S.TimeoutMs > 0 {
		r.deadline = r.start.Add(S.Timeout())
	}
	seed, ok := S.Seeded()
	if !ok {
		seed = uint64(time.Now().UnixNano())
	}
	r.seed = seed
	r.rng = rand.New(rand.NewPCG(seed, seed^rngMix))
	r.log = G.log.With(zap.String("run", uuid.NewString()), zap.Int("atoms", top.Len()), zap.Uint64("seed", seed))
	r.graph = chemgraph.New(top)
	return r
}

//interrupted checks ctx and the deadline of the run.
func (r *run) interrupted(ctx context.Context) (Status, bool) {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Timeout, true
		}
		return Aborted, true
	}
	if !r.deadline.IsZero() && time.Now().After(r.deadline) {
		return Timeout, true
	}
	return Success, false
}

func (r *run) ffOptions() mmff.Options {
	return mmff.Options{
		Strict:           r.S.StrictParameterization,
		Dielectric:       r.S.DielectricConstant,
		DistanceExponent: r.S.DistanceExponent,
	}
}

func (r *run) anyFixed(atoms []int) bool {
	if r.isFixed == nil {
		return false
	}
	for _, a := range atoms {
		if r.isFixed[a] {
			return true
		}
	}
	return false
}

//statusError carries a Status through an errgroup.
type statusError Status

func (s statusError) Error() string { return Status(s).String() }

func statusOf(err error) Status {
	var s statusError
	if errors.As(err, &s) {
		return Status(s)
	}
	return ConfGenFailed
}

/***Generation***/

//Generate builds a conformer ensemble for mol. If fixed is not empty, the atoms in it keep, in every
//conformer, the coordinates they have in the first frame of mol. The ensemble is kept in the generator
//and can be attached to a molecule with SetConformers. On failure, no conformers are kept.
func (G *Generator) Generate(ctx context.Context, mol *chem.Molecule, fixed []int) Status {
	G.mu.Lock()
	defer G.mu.Unlock()
	G.confs, G.energies = nil, nil
	G.stage.Store(int32(Uninitialized))
	if mol == nil || mol.Topology == nil || mol.Len() == 0 {
		G.log.Error("generation requested for an empty molecule")
		G.stage.Store(int32(Done))
		return ConfGenFailed
	}
	r := G.newRun(ctx, mol.Topology)
	st := G.generate(r, mol, fixed)
	G.setStage(r, Done)
	if !st.OK() {
		G.confs, G.energies = nil, nil
		r.log.Warn("generation failed", zap.Stringer("status", st), zap.Duration("elapsed", time.Since(r.start)))
		return st
	}
	r.log.Info("generation finished", zap.Stringer("status", st), zap.Int("conformers", len(G.confs)), zap.Duration("elapsed", time.Since(r.start)))
	return st
}

func (G *Generator) generate(r *run, mol *chem.Molecule, fixed []int) Status {
	G.setStage(r, Preparing)
	n := mol.Len()
	if len(fixed) > 0 {
		if mol.LenFrames() == 0 {
			return NoFixedSubstructCoords
		}
		r.isFixed = make([]bool, n)
		r.input = mol.Coord(0)
		for _, f := range fixed {
			if f < 0 || f >= n || r.isFixed[f] {
				r.log.Error("invalid fixed atom", zap.Int("atom", f))
				return ConfGenFailed
			}
			v := r.input.Vec(f)
			if math.IsNaN(v.X+v.Y+v.Z) || math.IsInf(v.X+v.Y+v.Z, 0) {
				return NoFixedSubstructCoords
			}
			r.isFixed[f] = true
			r.fixed = append(r.fixed, f)
		}
	}
	if G.fraglib == nil {
		return FragmentLibraryNotSet
	}
	ff, err := mmff.Setup(mol.Topology, G.params, r.ffOptions())
	if err != nil {
		r.log.Warn("force field setup failed", zap.Error(err))
		return ForceFieldSetupFailed
	}
	r.ff = ff
	r.log.Debug("force field", zap.Stringer("terms", ff))
	if st, stop := r.interrupted(r.ctx); stop {
		return st
	}

	G.setStage(r, FragmentConformerGeneration)
	systems := r.ringSystems()
	if st := G.prepareFragments(r, systems); st != Success && st != FragmentAlreadyProcessed {
		return st
	}
	frags := make([][]*v3.Matrix, len(systems))
	for i, s := range systems {
		confs, ok := G.fraglib.Lookup(s.sub)
		if !ok || len(confs) == 0 {
			return FragmentConfGenFailed
		}
		frags[i] = confs
	}
	if st, stop := r.interrupted(r.ctx); stop {
		return st
	}

	G.setStage(r, TorsionDriving)
	candidates, st := G.sample(r, systems, frags)
	if st != Success {
		return st
	}
	if st, stop := r.interrupted(r.ctx); stop {
		return st
	}

	G.setStage(r, Refinement)
	energies, st := G.refine(r, candidates)
	if st != Success {
		return st
	}
	if st, stop := r.interrupted(r.ctx); stop {
		return st
	}

	G.setStage(r, Selection)
	confs, es, st := G.selectConformers(r, candidates, energies)
	if !st.OK() {
		return st
	}
	G.confs, G.energies = confs, es
	return st
}

/***Fragments***/

type ringSystem struct {
	atoms []int
	sub   *chem.Topology
}

//ringSystems returns the ring systems of the molecule that contain no fixed atoms.
func (r *run) ringSystems() []ringSystem {
	var ret []ringSystem
	for _, atoms := range r.graph.RingSystems() {
		if r.anyFixed(atoms) {
			continue
		}
		ret = append(ret, ringSystem{atoms: atoms, sub: r.top.SubTopology(atoms)})
	}
	return ret
}

//PrepareFragments searches conformers for the ring systems of mol that are not yet in the
//fragment library, and stores them there. It returns FragmentAlreadyProcessed if there was
//nothing to do.
func (G *Generator) PrepareFragments(ctx context.Context, mol *chem.Molecule) Status {
	G.mu.Lock()
	defer G.mu.Unlock()
	if G.fraglib == nil {
		return FragmentLibraryNotSet
	}
	if mol == nil || mol.Topology == nil || mol.Len() == 0 {
		return ConfGenFailed
	}
	r := G.newRun(ctx, mol.Topology)
	G.setStage(r, FragmentConformerGeneration)
	st := G.prepareFragments(r, r.ringSystems())
	G.setStage(r, Done)
	return st
}

func (G *Generator) prepareFragments(r *run, systems []ringSystem) Status {
	var todo []ringSystem
	for _, s := range systems {
		if _, ok := G.fraglib.Lookup(s.sub); ok {
			continue
		}
		dup := false
		for _, t := range todo {
			if _, ok := chemgraph.Isomorphism(s.sub, t.sub); ok {
				dup = true
				break
			}
		}
		if !dup {
			todo = append(todo, s)
		}
	}
	if len(todo) == 0 {
		return FragmentAlreadyProcessed
	}
	r.log.Debug("searching fragment conformers", zap.Int("fragments", len(todo)))
	statuses := make([]Status, len(todo))
	eg, ctx := errgroup.WithContext(r.ctx)
	for n, s := range todo {
		eg.Go(func() error {
			confs, st := G.searchFragment(ctx, r, s.sub, uint64(n+1))
			statuses[n] = st
			if st != Success {
				return statusError(st)
			}
			G.fraglib.Add(s.sub, confs)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		//siblings of a failed search are aborted, the failure itself is more informative.
		for _, st := range statuses {
			if st != Success && st != Aborted {
				return st
			}
		}
		return statusOf(err)
	}
	return Success
}

//searchFragment finds up to MaxNumFragmentConformers distinct conformers for the ring system sub.
func (G *Generator) searchFragment(ctx context.Context, r *run, sub *chem.Topology, n uint64) ([]*v3.Matrix, Status) {
	ff, err := mmff.Setup(sub, G.params, r.ffOptions())
	if err != nil {
		r.log.Warn("fragment force field setup failed", zap.Error(err))
		return nil, FragmentConfGenFailed
	}
	cs, err := newBounder(sub, ff, nil).build()
	if err != nil {
		r.log.Warn("fragment bounds", zap.Error(err))
		return nil, FragmentConfGenFailed
	}
	minim := mmff.NewMinimizer(ff, r.S.MaxNumRefinementIterations, r.S.RefinementTolerance)
	maxconfs := r.S.MaxNumFragmentConformers
	var confs []*v3.Matrix
	var es []float64
	for k := 0; k < 4*maxconfs && len(confs) < maxconfs; k++ {
		if st, stop := r.interrupted(ctx); stop {
			if st == Timeout {
				return nil, FragmentConfGenTimeout
			}
			return nil, st
		}
		c, err := embed(cs, sub.Len(), r.seed+n*fragSeedStep+uint64(k), nil, nil)
		if err != nil {
			r.log.Warn("fragment embedding failed", zap.Error(err))
			return nil, FragmentConfGenFailed
		}
		res, err := minim.Minimize(c, nil)
		if err != nil {
			continue
		}
		dup := false
		for _, o := range confs {
			if d, err := chem.AlignedRMSD(c, o, nil); err == nil && d < fragmentRMSD {
				dup = true
				break
			}
		}
		if !dup {
			confs = append(confs, c)
			es = append(es, res.Energy)
		}
	}
	if len(confs) == 0 {
		return nil, FragmentConfGenFailed
	}
	sortByEnergy(confs, es)
	return confs, Success
}

/***Embedding and sampling***/

//embed places n atoms according to cs. The atoms in fixed are pinned at the corresponding
//rows of pos.
func embed(cs *dg.ConstraintSet, n int, seed uint64, fixed []int, pos *v3.Matrix) (*v3.Matrix, error) {
	L, err := dg.NewLayout(3)
	if err != nil {
		return nil, err
	}
	L.SetConstraints(cs)
	L.SetRandomSeed(seed)
	if err := L.SetNumCycles(embedCycles); err != nil {
		return nil, err
	}
	box := math.Max(5, 3*math.Cbrt(float64(n)))
	if err := L.SetBoxSize(box); err != nil {
		return nil, err
	}
	//the layout is translation invariant, so the fixed atoms are moved to the
	//center of the box and everything is moved back afterwards.
	var offset r3.Vec
	if len(fixed) > 0 {
		sub := v3.Zeros(len(fixed))
		sub.SomeVecs(pos, fixed)
		offset = r3.Sub(sub.Centroid(), r3.Vec{X: box / 2, Y: box / 2, Z: box / 2})
		for _, f := range fixed {
			p := r3.Sub(pos.Vec(f), offset)
			if err := L.SetFixedPoint(f, []float64{p.X, p.Y, p.Z}); err != nil {
				return nil, err
			}
		}
	}
	D, err := L.Generate(n)
	if err != nil {
		return nil, err
	}
	ret := v3.Dense2Matrix(D)
	ret.AddVec(ret, offset)
	for _, f := range fixed {
		ret.SetVec(f, pos.Vec(f))
	}
	return ret, nil
}

//sample embeds the molecule several times, with different fragment conformers, and drives
//the torsions of each embedding.
func (G *Generator) sample(r *run, systems []ringSystem, frags [][]*v3.Matrix) ([]*v3.Matrix, Status) {
	limit := r.S.MaxNumSampledConformers
	product := 1
	for _, f := range frags {
		product *= len(f)
		if product > limit {
			product = limit
		}
	}
	nemb := min(limit, max(product, minEmbeddings))
	budget := max(1, limit/nemb)
	driver := newTorsionDriver(r)
	var fixedPos *v3.Matrix
	if len(r.fixed) > 0 {
		fixedPos = v3.Zeros(len(r.fixed))
		fixedPos.SomeVecs(r.input, r.fixed)
	}
	var candidates []*v3.Matrix
	for k := 0; k < nemb; k++ {
		if st, stop := r.interrupted(r.ctx); stop {
			return nil, st
		}
		B := newBounder(r.top, r.ff, nil)
		var err error
		if len(r.fixed) > 1 {
			err = B.addRigid(r.fixed, fixedPos, fixedTol, dg.FixedDerived)
		}
		//fragment conformers are combined in mixed radix over the embedding index.
		idx := k
		for s, sys := range systems {
			c := frags[s][idx%len(frags[s])]
			idx /= len(frags[s])
			if err == nil {
				err = B.addRigid(sys.atoms, c, fragmentTol, dg.RingDerived)
			}
		}
		var cs *dg.ConstraintSet
		if err == nil {
			cs, err = B.build()
		}
		var c *v3.Matrix
		if err == nil {
			c, err = embed(cs, r.top.Len(), r.seed+uint64(k), r.fixed, r.input)
		}
		if err != nil {
			r.log.Error("embedding failed", zap.Int("embedding", k), zap.Error(err))
			return nil, ConfGenFailed
		}
		samples, st := driver.drive(r, c, budget)
		if st != Success {
			return nil, st
		}
		candidates = append(candidates, samples...)
	}
	r.log.Debug("sampled", zap.Int("embeddings", nemb), zap.Int("candidates", len(candidates)))
	if len(candidates) == 0 {
		return nil, TorsionDrivingFailed
	}
	return candidates, Success
}

/***Refinement***/

//refine minimizes the candidates in place, in parallel, and returns their energies. Candidates
//whose minimization failed get a NaN energy.
func (G *Generator) refine(r *run, candidates []*v3.Matrix) ([]float64, Status) {
	es := make([]float64, len(candidates))
	if r.S.MaxNumRefinementIterations == 0 {
		for i, c := range candidates {
			es[i] = r.ff.Energy(c)
		}
		return es, Success
	}
	minim := mmff.NewMinimizer(r.ff, r.S.MaxNumRefinementIterations, r.S.RefinementTolerance)
	eg, ctx := errgroup.WithContext(r.ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	var failed atomic.Int32
	for i, c := range candidates {
		eg.Go(func() error {
			if st, stop := r.interrupted(ctx); stop {
				return statusError(st)
			}
			res, err := minim.Minimize(c, r.fixed)
			if err != nil {
				r.log.Debug("minimization failed", zap.Int("candidate", i), zap.Error(err))
				es[i] = math.NaN()
				failed.Add(1)
				return nil
			}
			es[i] = res.Energy
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, statusOf(err)
	}
	if int(failed.Load()) == len(candidates) {
		return nil, ForceFieldMinimizationFailed
	}
	return es, Success
}

/***Results***/

//NumConformers returns the number of conformers produced by the last Generate call.
func (G *Generator) NumConformers() int {
	G.mu.Lock()
	defer G.mu.Unlock()
	return len(G.confs)
}

//Conformer returns a copy of the i-th conformer, or nil if there is no such conformer.
func (G *Generator) Conformer(i int) *v3.Matrix {
	G.mu.Lock()
	defer G.mu.Unlock()
	if i < 0 || i >= len(G.confs) {
		return nil
	}
	return G.confs[i].Clone()
}

//Energy returns the energy of the i-th conformer, and false if there is no such conformer.
func (G *Generator) Energy(i int) (float64, bool) {
	G.mu.Lock()
	defer G.mu.Unlock()
	if i < 0 || i >= len(G.energies) {
		return 0, false
	}
	return G.energies[i], true
}

//Energies returns a copy of the conformer energies, lowest first.
func (G *Generator) Energies() []float64 {
	G.mu.Lock()
	defer G.mu.Unlock()
	return append([]float64(nil), G.energies...)
}

//SetConformers replaces the frames of mol with copies of the generated conformers, lowest
//energy first, and sets their energies.
func (G *Generator) SetConformers(mol *chem.Molecule) error {
	G.mu.Lock()
	defer G.mu.Unlock()
	if len(G.confs) == 0 {
		return newError(ErrInvalidInput, "no conformers to set", "SetConformers")
	}
	frames := make([]*v3.Matrix, len(G.confs))
	for i, c := range G.confs {
		frames[i] = c.Clone()
	}
	if err := mol.SetFrames(frames, append([]float64(nil), G.energies...)); err != nil {
		return newError(ErrInvalidInput, fmt.Sprintf("molecule doesn't match the conformers: %v", err), "SetConformers")
	}
	return nil
}
