package link

// Pipeline builds the ordered LLVM pass list for an optimization tier, per
// §4.8: each tier is additive over the one below it rather than a single
// opaque `default<Ox>` bundle (contrast with the teacher's optimizeLLVM,
// which maps directly onto `default<O1/O2/O3>`). Passes are named to match
// opt's new pass-manager syntax.
func Pipeline(level string) []string {
	switch level {
	case "", "none":
		return nil
	case "mem2reg":
		return append([]string(nil), mem2regPasses...)
	case "o1":
		return append(append([]string(nil), mem2regPasses...), o1Passes...)
	case "o2":
		passes := append(append([]string(nil), mem2regPasses...), o1Passes...)
		return append(passes, o2Passes...)
	case "o3":
		passes := append(append([]string(nil), mem2regPasses...), o1Passes...)
		passes = append(passes, o2Passes...)
		return append(passes, o3Passes...)
	default:
		return append([]string(nil), mem2regPasses...)
	}
}

var (
	// mem2reg: SROA only.
	mem2regPasses = []string{"sroa"}

	// o1 adds CFG simplification, instruction combining, and dead-code
	// elimination at both the function and module level.
	o1Passes = []string{"simplifycfg", "instcombine", "dce", "globaldce"}

	// o2 adds sparse conditional constant propagation, global value
	// numbering, loop rotation/deletion, memcpy optimization, dead store
	// elimination, tail-call elimination, interprocedural SCCP, dead
	// argument elimination, and constant merging.
	o2Passes = []string{
		"sccp", "gvn", "loop-rotate", "loop-deletion", "memcpyopt",
		"dse", "tailcallelim", "ipsccp", "deadargelim", "constmerge",
	}

	// o3 adds loop unrolling and strength reduction, aggressive instruction
	// combining, code sinking, argument promotion, and function merging.
	o3Passes = []string{
		"loop-unroll", "loop-reduce", "aggressive-instcombine",
		"sink", "argpromotion", "mergefunc",
	}
)

// PassesString joins a tier's passes into the comma-separated form opt's
// `-passes=` flag expects. An empty result means "no optimization" (the
// caller should skip invoking opt entirely).
func PassesString(level string) string {
	passes := Pipeline(level)
	if len(passes) == 0 {
		return ""
	}
	out := passes[0]
	for _, p := range passes[1:] {
		out += "," + p
	}
	return out
}
