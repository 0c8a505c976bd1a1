package assim

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrIllConditioned is returned when an analysis has to invert a matrix
// that is not positive definite.
var ErrIllConditioned = errors.New("assim: analysis matrix is not positive definite")

// EnKF is an ensemble Kalman filter. Ensembles are matrices with one member
// per row.
type EnKF struct {
	Method Method
	rng    *rand.Rand
}

// NewEnKF returns a filter using method. rng feeds the observation
// perturbations of MethodPertObs and is unused otherwise.
func NewEnKF(method Method, rng *rand.Rand) *EnKF {
	return &EnKF{Method: method, rng: rng}
}

// mean returns the column means of E.
func mean(E mat.Matrix) []float64 {
	n, m := E.Dims()
	mu := make([]float64, m)
	col := make([]float64, n)
	for j := range mu {
		mat.Col(col, j, E)
		mu[j] = stat.Mean(col, nil)
	}
	return mu
}

// anomalies returns a copy of E with mu subtracted from every row.
func anomalies(E mat.Matrix, mu []float64) *mat.Dense {
	n, m := E.Dims()
	A := mat.NewDense(n, m, nil)
	A.Apply(func(_, j int, v float64) float64 { return v - mu[j] }, E)
	return A
}

// Inflate scales the spread of E about its mean by infl.
func Inflate(E *mat.Dense, infl float64) {
	if infl == 1 {
		return
	}
	mu := mean(E)
	E.Apply(func(_, j int, v float64) float64 { return mu[j] + infl*(v-mu[j]) }, E)
}

// observeEnsemble applies Observe to every member.
func observeEnsemble(E *mat.Dense, idx []int) *mat.Dense {
	n, _ := E.Dims()
	hE := mat.NewDense(n, len(idx), nil)
	for i := 0; i < n; i++ {
		for k, j := range idx {
			hE.Set(i, k, E.At(i, j))
		}
	}
	return hE
}

// Analyse updates E in place with the observation y of the components idx,
// whose errors are independent with variance r.
func (f *EnKF) Analyse(E *mat.Dense, y []float64, idx []int, r float64) error {
	n, _ := E.Dims()
	if n < 2 {
		return fmt.Errorf("assim: analysis needs at least 2 members, got %d", n)
	}
	if len(y) != len(idx) {
		return fmt.Errorf("assim: %d observations for %d observed components", len(y), len(idx))
	}

	mu := mean(E)
	A := anomalies(E, mu)
	hE := observeEnsemble(E, idx)
	hmu := mean(hE)
	Y := anomalies(hE, hmu)

	switch f.Method {
	case MethodSqrt:
		dy := make([]float64, len(y))
		floats.SubTo(dy, y, hmu)
		return sqrtUpdate(E, mu, A, Y, dy, r)
	case MethodPertObs:
		return f.pertObsUpdate(E, A, hE, Y, y, r)
	}
	return fmt.Errorf("unknown method: %s (available: %v)", f.Method, Methods())
}

// sqrtUpdate is the ensemble transform update in ensemble space:
//
//	Pw = (Y Y'/r + (N-1) I)^-1
//	w  = Pw Y dy / r
//	E  = mu + (sqrt((N-1) Pw) + 1 w') A
func sqrtUpdate(E *mat.Dense, mu []float64, A, Y *mat.Dense, dy []float64, r float64) error {
	n, _ := A.Dims()

	var yyt mat.Dense
	yyt.Mul(Y, Y.T())
	G := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := yyt.At(i, j) / r
			if i == j {
				v += float64(n - 1)
			}
			G.SetSym(i, j, v)
		}
	}

	var eig mat.EigenSym
	if !eig.Factorize(G, true) {
		return ErrIllConditioned
	}
	vals := eig.Values(nil)
	var V mat.Dense
	eig.VectorsTo(&V)

	inv := make([]float64, n)
	root := make([]float64, n)
	for i, l := range vals {
		if l <= 0 {
			return ErrIllConditioned
		}
		inv[i] = 1 / l
		root[i] = math.Sqrt(float64(n-1) / l)
	}
	Pw := fromEigen(&V, inv)
	T := fromEigen(&V, root)

	var ydy, w mat.VecDense
	ydy.MulVec(Y, mat.NewVecDense(len(dy), dy))
	ydy.ScaleVec(1/r, &ydy)
	w.MulVec(Pw, &ydy)

	T.Apply(func(_, j int, v float64) float64 { return v + w.AtVec(j) }, T)
	E.Mul(T, A)
	addToRows(E, mu)
	return nil
}

// pertObsUpdate is the stochastic update: every member assimilates its own
// perturbed copy of y through the ensemble Kalman gain.
func (f *EnKF) pertObsUpdate(E, A, hE, Y *mat.Dense, y []float64, r float64) error {
	n, p := hE.Dims()

	D := mat.NewDense(n, p, nil)
	sd := math.Sqrt(r)
	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			D.Set(i, j, sd*f.rng.NormFloat64())
		}
	}
	// Centred perturbations keep the mean update equal to the Kalman one.
	D = anomalies(D, mean(D))

	var yty mat.Dense
	yty.Mul(Y.T(), Y)
	C := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v := yty.At(i, j) / float64(n-1)
			if i == j {
				v += r
			}
			C.SetSym(i, j, v)
		}
	}
	var chol mat.Cholesky
	if !chol.Factorize(C) {
		return ErrIllConditioned
	}

	var yta, kt mat.Dense
	yta.Mul(Y.T(), A)
	yta.Scale(1/float64(n-1), &yta)
	if err := chol.SolveTo(&kt, &yta); err != nil {
		return fmt.Errorf("kalman gain: %w", err)
	}

	innov := mat.NewDense(n, p, nil)
	innov.Apply(func(i, j int, v float64) float64 { return y[j] + v - hE.At(i, j) }, D)
	var dE mat.Dense
	dE.Mul(innov, &kt)
	E.Add(E, &dE)
	return nil
}

// fromEigen rebuilds V diag(d) V'.
func fromEigen(V *mat.Dense, d []float64) *mat.Dense {
	n, _ := V.Dims()
	var vd mat.Dense
	vd.Mul(V, mat.NewDiagDense(n, d))
	out := mat.NewDense(n, n, nil)
	out.Mul(&vd, V.T())
	return out
}

func addToRows(E *mat.Dense, v []float64) {
	n, _ := E.Dims()
	for i := 0; i < n; i++ {
		floats.Add(E.RawRowView(i), v)
	}
}
