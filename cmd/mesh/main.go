package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/stevegt/mesh"
)

func main() {
	netPath := flag.String("net", "", "network description file")
	setPath := flag.String("set", "", "training set file")
	testPath := flag.String("test", "", "test set file (default: the training set)")
	loadPath := flag.String("load", "", "load weights from this file instead of training")
	savePath := flag.String("save", "", "save trained weights to this file")
	dotPath := flag.String("dot", "", "write the network graph in dot syntax to this file")
	verbose := flag.Bool("v", false, "log debug messages")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	if *netPath == "" || *setPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	err := run(log, *netPath, *setPath, *testPath, *loadPath, *savePath, *dotPath)
	if err != nil {
		log.WithError(err).Error("failed")
		switch {
		case mesh.IsResource(err):
			os.Exit(3)
		case mesh.IsData(err):
			os.Exit(4)
		}
		os.Exit(1)
	}
}

func run(log *logrus.Logger, netPath, setPath, testPath, loadPath, savePath, dotPath string) (err error) {
	defer Return(&err)

	n, err := mesh.LoadNetwork(netPath)
	Ck(err)
	n.SetLogger(log)
	s := mesh.NewSession(log)
	Ck(s.Add(n))

	if dotPath != "" {
		err = os.WriteFile(dotPath, []byte(n.Dot()), 0644)
		Ck(err)
	}

	train, err := n.LoadSet(setPath)
	Ck(err)
	Ck(n.Init())

	// ^C stops training or testing after the current item
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		for range sig {
			n.Interrupt()
		}
	}()

	if loadPath != "" {
		Ck(n.LoadWeightsFile(loadPath))
	} else {
		err = n.Train()
		if mesh.IsMaxEpochs(err) {
			log.WithError(err).Warn("error threshold not reached")
			err = nil
		}
		Ck(err)
	}
	if savePath != "" {
		Ck(n.SaveWeightsFile(savePath))
	}

	if testPath != "" && testPath != setPath {
		_, err = n.LoadSet(testPath)
		Ck(err)
	} else {
		Ck(n.SelectSet(train.Name()))
	}
	res, err := n.Test()
	Ck(err)
	Pf("%s: error %.6f over %d items, %d within threshold\n", n.Name(), res.Error, res.Items, res.Reached)
	for _, it := range n.Active.Items.Elements() {
		events, err := n.TestItem(it.Name())
		Ck(err)
		last := events[len(events)-1]
		Pf("  %-12s %s\n", it.Name(), last.Output)
	}
	sim, err := n.SimilarityMatrix()
	Ck(err)
	Pf("similarity (%s): mean %.4f, sd %.4f, %d items closest to their own target\n", n.Similarity, sim.Mean, sim.SD, sim.Reached)
	ws := n.WeightStats()
	Pf("weights: %d, cost %.4f, mean %.4f, variance %.4f\n", ws.Count, ws.Cost, ws.Mean, ws.Variance)
	return
}
