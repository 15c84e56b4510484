// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package loop implements the readiness-driven echo event loop.
//
// One EchoLoop owns one non-blocking UDP socket, one reactor registration,
// and one bounded outgoing queue; nothing else may touch them, so the loop
// needs no locks. Every pass attempts both directions — drain receivable
// datagrams (bounded by a per-pass cap) and flush sendable queue entries —
// so neither direction can starve the other the way a strict
// read-phase/write-phase alternation does.
//
// Write interest is asserted if and only if the queue is non-empty; the loop
// recomputes the interest set before every blocking wait so a level-triggered
// reactor never spins on writability it has no use for.
//
// Fairness across logical streams multiplexed on one socket is deliberately
// out of scope: the queue is plain FIFO and the read cap is the only knob
// bounding how long one backlog can hold the loop.
package loop
