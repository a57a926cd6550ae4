package preprocessing

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/modeldiag/pkg/errors"
)

// degenerateTol は標準偏差を0とみなす相対許容誤差
const degenerateTol = 1e-12

// StandardScaler は各列を平均0・標準偏差1に変換する。
// 標準偏差は標本標準偏差（n-1 で割る）を使う。
// 分散0の列は Scale を1とし、Degenerate に記録する。
type StandardScaler struct {
	// Mean は各特徴量の平均値
	Mean []float64

	// Scale は各特徴量の標本標準偏差（分散0の列では1）
	Scale []float64

	// Degenerate は分散0の列を示す
	Degenerate []bool

	// NFeatures は特徴量の数
	NFeatures int

	fitted bool
}

// NewStandardScaler は新しいStandardScalerを作成する
//
// 使用例:
//
//	scaler := preprocessing.NewStandardScaler()
//	Z, err := scaler.FitTransform(X)
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit は各列の平均と標本標準偏差を計算する
//
// パラメータ:
//   - X: n_samples × n_features の行列 (n_samples >= 2)
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if c == 0 {
		return errors.NewInsufficientDataError("StandardScaler.Fit", 1, 0)
	}
	if r < 2 {
		return errors.NewInsufficientDataError("StandardScaler.Fit", 2, r)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)
	s.Degenerate = make([]bool, c)

	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X)
		mean, std := stat.MeanStdDev(col, nil)
		s.Mean[j] = mean
		s.Scale[j] = std

		// 平均に対して相対的に0とみなせる標準偏差は定数列の丸め誤差として扱い、1に設定する
		if std == 0 || std <= degenerateTol*math.Abs(mean) {
			s.Scale[j] = 1.0
			s.Degenerate[j] = true
		}
	}

	s.fitted = true
	return nil
}

// Transform は学習済みの統計情報を使ってデータを標準化する。
// 分散0の列は0で埋める。
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.fitted {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	result.Apply(func(i, j int, v float64) float64 {
		if s.Degenerate[j] {
			return 0
		}
		return (v - s.Mean[j]) / s.Scale[j]
	}, X)
	return result, nil
}

// FitTransform はFitとTransformを続けて実行する
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// IsFitted は Fit 済みかどうかを返す
func (s *StandardScaler) IsFitted() bool {
	return s.fitted
}
