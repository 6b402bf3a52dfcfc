package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/vishalbelsare/ebnm"
	"github.com/vishalbelsare/ebnm/pointnormal"
)

var (
	SE   = 1.
	NORM = 0.
	PI0  = math.NaN()
	A    = math.NaN()
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Fits the point-normal empirical Bayes model. Invocation:
  %s [OPTIONS] < INPUT > OUTPUT
or
  %s [OPTIONS] selfcheck
Input records are x or x,s, one observation per record; any further
fields are carried through. Each output record is the input record
with the posterior mean and second moment appended. The fitted prior
and the log likelihood go to standard error. In 'selfcheck' mode,
the data hard-coded into the program is used, to demonstrate basic
functionality.
`, os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Float64Var(&SE, "se", SE,
		"standard error when the input has no second field")
	flag.Float64Var(&NORM, "norm", NORM,
		"normalization factor, 0 selects the mean standard error")
	flag.Float64Var(&PI0, "pi0", PI0,
		"fixed point mass weight, requires -a")
	flag.Float64Var(&A, "a", A,
		"fixed normal component precision, requires -pi0")
}

func main() {
	var (
		input  io.Reader = os.Stdin
		output io.Writer = os.Stdout
	)

	flag.Parse()
	switch {
	case flag.NArg() == 0:
	case flag.NArg() == 1 && flag.Arg(0) == "selfcheck":
		input = strings.NewReader(selfCheckData)
	default:
		panic("usage")
	}

	fmt.Fprint(os.Stderr, "loading...")
	x, s, records, err := load(input)
	if err != nil {
		panic(err)
	}
	fmt.Fprintln(os.Stderr, "done")

	opts := &ebnm.Options{
		Out:  ebnm.Posterior | ebnm.FittedPrior | ebnm.LogLik,
		Norm: NORM,
	}
	switch {
	case !math.IsNaN(PI0) && !math.IsNaN(A):
		opts.Prior = pointnormal.Prior{Pi0: PI0, A: A}
		opts.Fix = true
	case !math.IsNaN(PI0) || !math.IsNaN(A):
		panic("usage: -pi0 and -a must be given together")
	}

	fmt.Fprint(os.Stderr, "fitting...")
	res, err := pointnormal.Fit(x, s, opts)
	if err != nil {
		panic(err)
	}
	fmt.Fprintln(os.Stderr, "done")

	prior := res.Prior.(pointnormal.Prior)
	fmt.Fprintf(os.Stderr, "pi0=%.6g a=%.6g loglik=%.6g\n",
		prior.Pi0, prior.A, res.LogLik)

	for i, record := range records {
		for _, field := range record {
			fmt.Fprintf(output, "%s,", field)
		}
		fmt.Fprintf(output, "%g,%g\n",
			res.Posterior[i].Mean, res.Posterior[i].M2)
	}
}

// load parses the data from csv and returns the observations, the
// standard errors, and the raw records for echoing.
func load(rdr io.Reader) (
	x []float64,
	s []float64,
	records [][]string,
	err error,
) {
	csv := csv.NewReader(rdr)
RECORDS:
	for {
		record, err := csv.Read()
		switch err {
		case nil:
			// record contains the data
			xi, err := strconv.ParseFloat(record[0], 64)
			if err != nil {
				// data error
				return x, s, records, err
			}
			si := SE
			if len(record) > 1 {
				si, err = strconv.ParseFloat(record[1], 64)
				if err != nil {
					// data error
					return x, s, records, err
				}
			}
			x = append(x, xi)
			s = append(s, si)
			records = append(records, record)
		case io.EOF:
			// end of file
			break RECORDS
		default:
			// i/o error
			return x, s, records, err
		}
	}

	return x, s, records, nil
}

var selfCheckData = `0.9406899867421608,1
-0.02669408278329874,1
1.3526118285994146,1
-0.5238124761381804,1
0.19875221254626446,1
4.911347004912114,1
-1.0915569813424349,1
0.3418824772904758,1
-0.7204662120202817,1
-3.7021904705723864,1
0.12844806515193147,1
-1.4548446090442039,1
0.6300915414336634,1
5.8326210433854826,1
-0.2413112470081457,1
1.0902243044571859,1
-0.8125641435143786,1
0.05683983922285881,1
-4.460491971538032,1
0.7783926196578879,1
-0.3167705662534248,1
1.8065221204496429,1
0.4492110523176718,1
-0.9927874348741213,1
3.9183104084828,1
-0.17462859107650742,1
0.8309722434838339,1
-1.2478503141546327,1
-6.213497095582298,1
0.023216690177625,1
1.5351450109731312,1
-0.6468162632202363,1
4.605136399492916,1
0.2808887562522102,1
-2.0357745967083624,1
0.4103949809137759,1
`
