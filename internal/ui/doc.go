// Package ui hosts the docking engine in a Bubble Tea program.
//
// The engine owns the layout; this package draws it and feeds it input:
//   - App: the root tea.Model. Renders groups, tab strips, sashes and
//     floating overlays; routes keys, mouse drags and window resizes.
//   - TeaBridge: mounts panel content as Content models in engine nodes.
//   - ScreenHost: shows popout groups as full-screen alternate windows.
//   - KeyHandler: leader-key (SPC) keybinds with a help bar.
//   - OverlayStack: modals (panel switcher, confirmations) above the layout.
package ui
