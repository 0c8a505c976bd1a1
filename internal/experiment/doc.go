// Package experiment turns a configuration into trajectories.
//
// [SampleLorenz63] integrates an ensemble of perturbed copies of a proto
// state, [SampleLorenz96] a single trajectory from a nearly resting state.
// Both are one-shot computations: a config in, a result out, nothing kept
// between calls. Inputs are not range-checked here; callers that take user
// input run the configs' Validate methods first.
package experiment
