package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
)

var (
	COMMA  = ","
	SKIP   = 0
	JTHETA = 2
	JMEAN  = -2
	JM2    = -1
	FLOOR  = 1e-12
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Scores fitted posteriors against the latent means. Invocation:
	%s  [OPTIONS] < OUTPUT-OF-FIT
Prints the root mean square error of the posterior means and the
average negative log predictive density of the latent means.
Negative field indices count from the end of the record.
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&COMMA, "comma", COMMA, "field separator")
	flag.IntVar(&SKIP, "s", SKIP, "initial records to skip")
	flag.IntVar(&JTHETA, "jtheta", JTHETA, "index of the latent mean field")
	flag.IntVar(&JMEAN, "jmean", JMEAN, "index of the posterior mean field")
	flag.IntVar(&JM2, "jm2", JM2, "index of the posterior second moment field")
	flag.Float64Var(&FLOOR, "floor", FLOOR, "lower bound on the predictive variance")
}

// negative log predictive density of the latent mean under the
// posterior's matching normal
func nlpd(theta, mean, vari float64) float64 {
	d := theta - mean
	return 0.5 * (math.Log(2*math.Pi*vari) + d*d/vari)
}

func field(record []string, j int) float64 {
	if j < 0 {
		j += len(record)
	}
	v, _ := strconv.ParseFloat(record[j], 64)
	return v
}

func main() {
	flag.Parse()

	rdr := csv.NewReader(os.Stdin)
	rdr.Comma = rune(COMMA[0])

	sumsq, sumnlpd := 0., 0.
	n := 0
	for skip := SKIP; ; {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}

		if skip > 0 {
			skip--
			continue
		}

		theta := field(record, JTHETA)
		mean := field(record, JMEAN)
		m2 := field(record, JM2)
		vari := math.Max(m2-mean*mean, FLOOR)
		sumsq += (mean - theta) * (mean - theta)
		sumnlpd += nlpd(theta, mean, vari)
		n++
	}
	fmt.Printf("rmse=%f nlpd=%f\n",
		math.Sqrt(sumsq/float64(n)), sumnlpd/float64(n))
}
