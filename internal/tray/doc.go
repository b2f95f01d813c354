// ABOUTME: Tray package
// ABOUTME: Documents the icon, menu and failure display
// Package tray shows the microphone level in the notification area.
//
// Host implements monitor.Publisher. Updates pass through a latest-wins
// slot to a goroutine owned by the tray, which encodes each image (ICO on
// Windows, PNG elsewhere) and sets it as the icon. The menu offers the
// configured links, a Listen toggle for sidetone, and Quit.
//
// Run must be called from the main goroutine; it returns after Quit or Close.
package tray
