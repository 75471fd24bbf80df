// Package engine drives the simulation with a cooperative tick loop.
// Cooldown decrement runs every tick and proximity scans run on a coarser
// cadence, both synchronously on the loop; dialogue generation is
// asynchronous and suspends only the issuing session, never the loop or
// other agents. The engine also hosts the director operations that force or
// end conversations from outside the scanner path.
package engine
