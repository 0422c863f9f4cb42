// Package main provides the ndarray CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"

	"golang.org/x/exp/maps"
	"k8s.io/klog/v2"

	"github.com/born-ml/ndarray/array"
	"github.com/born-ml/ndarray/autodiff"
	"github.com/born-ml/ndarray/internal/backend"
	_ "github.com/born-ml/ndarray/internal/backend/cpu"
	"github.com/born-ml/ndarray/internal/serialization"
)

const version = "v0.1.0-dev"

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	if err := run(os.Stdout, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "ndarray: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "ndarray - strided arrays with multi-graph autograd")
	fmt.Fprintf(os.Stderr, "Version: %s\n\n", version)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  version    Show version")
	fmt.Fprintln(os.Stderr, "  devices    List registered backends and their devices")
	fmt.Fprintln(os.Stderr, "  demo       Run a two-graph backward pass on the default device")
	fmt.Fprintln(os.Stderr, "  inspect    Print the arrays stored in a SafeTensors file")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func run(w io.Writer, args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}
	switch args[0] {
	case "version":
		fmt.Fprintf(w, "ndarray %s\n", version)
		return nil
	case "devices":
		return listDevices(w, backend.Default())
	case "demo":
		return demo(w)
	case "inspect":
		if len(args) != 2 {
			return fmt.Errorf("usage: ndarray inspect <file>")
		}
		return inspect(w, args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func listDevices(w io.Writer, ctx *backend.Context) error {
	for _, name := range backend.Registered() {
		b, err := ctx.Backend(name)
		if err != nil {
			fmt.Fprintf(w, "%-8s unavailable: %v\n", name, err)
			continue
		}
		for i := 0; i < b.DeviceCount(); i++ {
			d, err := b.Device(i)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%-8s %s\n", name, d.Name())
		}
	}
	def, err := ctx.DefaultDevice()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "default  %s\n", def.Name())
	return nil
}

// demo computes sum(x*x) in graph "loss" and sum(x) in graph "count" and
// prints the gradient of x in each.
func demo(w io.Writer) error {
	x, err := array.Linspace(-1, 1, 5, array.Float32, nil)
	if err != nil {
		return err
	}
	x.RequireGrad("loss", "count")

	sq, err := array.Mul(x, x)
	if err != nil {
		return err
	}
	loss, err := array.Sum(sq)
	if err != nil {
		return err
	}
	count, err := array.Sum(x)
	if err != nil {
		return err
	}
	if err := loss.Backward("loss"); err != nil {
		return err
	}
	if err := count.Backward("count"); err != nil {
		return err
	}

	fmt.Fprintf(w, "device: %s\n", x.Device().Name())
	for _, g := range []autodiff.GraphID{"loss", "count"} {
		grad, err := x.GetGrad(g)
		if err != nil {
			return err
		}
		values, err := grad.Float64s()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "grad[%s] = %v\n", g, values)
	}
	return nil
}

// inspect lists every array of a SafeTensors file with its metadata.
func inspect(w io.Writer, path string) error {
	arrays, metadata, err := serialization.ReadFile(path, nil)
	if err != nil {
		return err
	}
	keys := maps.Keys(metadata)
	slices.Sort(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "# %s: %s\n", key, metadata[key])
	}
	names := maps.Keys(arrays)
	slices.Sort(names)
	for _, name := range names {
		a := arrays[name]
		fmt.Fprintf(w, "%s %s %v\n", name, a.DType(), a.Shape())
		a.Release()
	}
	return nil
}
