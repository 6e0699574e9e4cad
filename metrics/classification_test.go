package metrics

import (
	"math"
	"testing"

	"github.com/evalgo-ml/evalgo/pkg/errors"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yPred   []float64
		want    float64
		wantErr bool
	}{
		{
			name:  "all correct",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 1, 0},
			want:  1,
		},
		{
			name:  "three of four",
			yTrue: []float64{0, 1, 1, 0},
			yPred: []float64{0, 1, 0, 0},
			want:  0.75,
		},
		{
			name:  "multiclass",
			yTrue: []float64{0, 1, 2, 2},
			yPred: []float64{0, 2, 2, 2},
			want:  0.75,
		},
		{
			name:    "length mismatch",
			yTrue:   []float64{0, 1},
			yPred:   []float64{0},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(vec(tt.yTrue...), vec(tt.yPred...))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Accuracy() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if math.Abs(got-tt.want) > tol {
				t.Errorf("Accuracy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrecisionRecallF1(t *testing.T) {
	// tp=2, fp=1, fn=1 for the positive class 1.
	yTrue := vec(1, 1, 1, 0, 0)
	yPred := vec(1, 1, 0, 1, 0)

	p, err := Precision(yTrue, yPred, 1)
	if err != nil {
		t.Fatalf("Precision() error = %v", err)
	}
	if math.Abs(p-2.0/3.0) > tol {
		t.Errorf("Precision() = %v, want 2/3", p)
	}

	r, err := Recall(yTrue, yPred, 1)
	if err != nil {
		t.Fatalf("Recall() error = %v", err)
	}
	if math.Abs(r-2.0/3.0) > tol {
		t.Errorf("Recall() = %v, want 2/3", r)
	}

	f1, err := F1Score(yTrue, yPred, 1)
	if err != nil {
		t.Fatalf("F1Score() error = %v", err)
	}
	if math.Abs(f1-2.0/3.0) > tol {
		t.Errorf("F1Score() = %v, want 2/3", f1)
	}
}

func TestPrecisionNoPredictedPositives(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	p, err := Precision(vec(1, 0, 1), vec(0, 0, 0), 1)
	if err != nil {
		t.Fatalf("Precision() error = %v", err)
	}
	if p != 0 {
		t.Errorf("Precision() with no predicted positives = %v, want 0", p)
	}
	if len(warned) != 1 {
		t.Errorf("warnings = %d, want 1", len(warned))
	}
}

func TestAUC(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   []float64
		yScore  []float64
		want    float64
		wantErr bool
	}{
		{
			name:   "perfect ranking",
			yTrue:  []float64{0, 0, 1, 1},
			yScore: []float64{0.1, 0.2, 0.8, 0.9},
			want:   1,
		},
		{
			name:   "inverted ranking",
			yTrue:  []float64{0, 0, 1, 1},
			yScore: []float64{0.9, 0.8, 0.2, 0.1},
			want:   0,
		},
		{
			name:   "partial ranking",
			yTrue:  []float64{0, 0, 1, 1},
			yScore: []float64{0.1, 0.4, 0.35, 0.8},
			want:   0.75,
		},
		{
			name:   "tied scores average",
			yTrue:  []float64{0, 1, 0, 1},
			yScore: []float64{0.5, 0.5, 0.5, 0.5},
			want:   0.5,
		},
		{
			name:    "non-binary labels",
			yTrue:   []float64{0, 1, 2},
			yScore:  []float64{0.1, 0.5, 0.9},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUC(vec(tt.yTrue...), vec(tt.yScore...))
			if (err != nil) != tt.wantErr {
				t.Fatalf("AUC() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if math.Abs(got-tt.want) > tol {
				t.Errorf("AUC() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAUCSingleClass(t *testing.T) {
	var warned []error
	errors.SetWarningHandler(func(w error) { warned = append(warned, w) })
	defer errors.SetWarningHandler(nil)

	got, err := AUC(vec(1, 1, 1), vec(0.2, 0.5, 0.8))
	if err != nil {
		t.Fatalf("AUC() error = %v", err)
	}
	if got != 0.5 {
		t.Errorf("AUC() with one class = %v, want 0.5", got)
	}
	if len(warned) != 1 {
		t.Errorf("warnings = %d, want 1", len(warned))
	}
}

func TestBinaryLogLoss(t *testing.T) {
	// -mean(log 0.9, log 0.8, log 0.7, log 0.6).
	got, err := BinaryLogLoss(vec(1, 0, 1, 0), vec(0.9, 0.2, 0.7, 0.4))
	if err != nil {
		t.Fatalf("BinaryLogLoss() error = %v", err)
	}
	want := -(math.Log(0.9) + math.Log(0.8) + math.Log(0.7) + math.Log(0.6)) / 4
	if math.Abs(got-want) > tol {
		t.Errorf("BinaryLogLoss() = %v, want %v", got, want)
	}
}

func TestBinaryLogLossClipsExtremes(t *testing.T) {
	got, err := BinaryLogLoss(vec(1, 0), vec(0, 1))
	if err != nil {
		t.Fatalf("BinaryLogLoss() error = %v", err)
	}
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Errorf("BinaryLogLoss() with extreme probabilities = %v, want finite", got)
	}
}

func TestConfusionMatrix(t *testing.T) {
	counts, classes, err := ConfusionMatrix(vec(0, 0, 1, 1, 1), vec(0, 1, 1, 1, 0))
	if err != nil {
		t.Fatalf("ConfusionMatrix() error = %v", err)
	}
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		t.Fatalf("classes = %v, want [0 1]", classes)
	}
	want := [][]float64{{1, 1}, {1, 2}}
	for i := range want {
		for j := range want[i] {
			if counts.At(i, j) != want[i][j] {
				t.Errorf("counts[%d][%d] = %v, want %v", i, j, counts.At(i, j), want[i][j])
			}
		}
	}
}

func BenchmarkAUC(b *testing.B) {
	n := 1000
	yTrue := make([]float64, n)
	yScore := make([]float64, n)
	for i := 0; i < n; i++ {
		yTrue[i] = float64(i % 2)
		yScore[i] = float64(i%97) / 97
	}
	tv, sv := vec(yTrue...), vec(yScore...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := AUC(tv, sv); err != nil {
			b.Fatal(err)
		}
	}
}
