// Package fsmgrader grades students' control logic.
//
// Students write either a truth table (package 'core'), which is
// stepped against an environment such as a maze ant or an elevator
// (packages under 'envs'), or a Turing machine program (package
// 'turing'), which is run on its own test tapes.  Package 'checkoff'
// assembles what a student submits, and 'storage' keeps graded
// submissions.
//
// Command-line tools are in 'cmd'.
package fsmgrader
