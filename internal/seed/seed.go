// Package seed loads the sample portfolio shown on a fresh install.
package seed

import (
	"context"
	"fmt"

	"portfolio-api/internal/query"
	"portfolio-api/internal/service"
)

type Counter interface {
	Count(ctx context.Context, f query.Filter) (int64, error)
}

type Creator interface {
	Create(ctx context.Context, in service.ProjectInput) error
}

// CreatorFunc 适配 ProjectService.Create 之类的函数
type CreatorFunc func(ctx context.Context, in service.ProjectInput) error

func (f CreatorFunc) Create(ctx context.Context, in service.ProjectInput) error { return f(ctx, in) }

// Projects 仅在项目表为空时写入样例，返回写入条数
func Projects(ctx context.Context, existing Counter, dst Creator) (int, error) {
	n, err := existing.Count(ctx, query.Filter{})
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	if n > 0 {
		return 0, nil
	}
	samples := SampleProjects()
	for i, in := range samples {
		if err := dst.Create(ctx, in); err != nil {
			return i, fmt.Errorf("seed %q: %w", in.Title, err)
		}
	}
	return len(samples), nil
}

func SampleProjects() []service.ProjectInput {
	return []service.ProjectInput{
		{
			Title:            "E-Commerce Platform",
			Description:      "A full-stack e-commerce platform built with React, Node.js, and MongoDB. Features include user authentication, product management, shopping cart, payment integration, and admin dashboard.",
			ShortDescription: "Modern e-commerce platform with React and Node.js",
			Image:            "https://images.unsplash.com/photo-1556742049-0cfed4f6a45d?w=500&h=300&fit=crop",
			Technologies:     []string{"React", "Node.js", "MongoDB", "Express", "Stripe", "JWT"},
			Category:         "web",
			Featured:         true,
			Order:            1,
			Status:           "completed",
			StartDate:        "2023-01-15",
			EndDate:          "2023-03-20",
			GithubURL:        "https://github.com/yourusername/ecommerce-platform",
			LiveURL:          "https://your-ecommerce-demo.com",
		},
		{
			Title:            "Task Management App",
			Description:      "A collaborative task management application with real-time updates, drag-and-drop functionality, and team collaboration features. Built with modern web technologies.",
			ShortDescription: "Collaborative task management with real-time updates",
			Image:            "https://images.unsplash.com/photo-1611224923853-80b023f02d71?w=500&h=300&fit=crop",
			Technologies:     []string{"React", "Socket.io", "Node.js", "PostgreSQL", "Redis"},
			Category:         "web",
			Featured:         true,
			Order:            2,
			Status:           "completed",
			StartDate:        "2023-04-01",
			EndDate:          "2023-06-15",
			GithubURL:        "https://github.com/yourusername/task-manager",
			LiveURL:          "https://your-task-manager-demo.com",
		},
		{
			Title:            "Weather Dashboard",
			Description:      "A responsive weather dashboard that displays current weather conditions and forecasts for multiple cities. Features include location-based weather, interactive maps, and weather alerts.",
			ShortDescription: "Interactive weather dashboard with location services",
			Image:            "https://images.unsplash.com/photo-1504608524841-42fe6f032b4b?w=500&h=300&fit=crop",
			Technologies:     []string{"React", "TypeScript", "OpenWeather API", "Chart.js", "PWA"},
			Category:         "web",
			Order:            3,
			Status:           "completed",
			StartDate:        "2023-07-01",
			EndDate:          "2023-08-15",
			GithubURL:        "https://github.com/yourusername/weather-dashboard",
			LiveURL:          "https://your-weather-demo.com",
		},
		{
			Title:            "Mobile Banking App",
			Description:      "A secure mobile banking application with biometric authentication, transaction history, bill payments, and money transfer features. Built with React Native.",
			ShortDescription: "Secure mobile banking with biometric authentication",
			Image:            "https://images.unsplash.com/photo-1563013544-824ae1b704d3?w=500&h=300&fit=crop",
			Technologies:     []string{"React Native", "Node.js", "MongoDB", "Biometric Auth", "Encryption"},
			Category:         "mobile",
			Featured:         true,
			Order:            4,
			Status:           "in-progress",
			StartDate:        "2023-09-01",
			GithubURL:        "https://github.com/yourusername/mobile-banking",
			LiveURL:          "https://your-banking-demo.com",
		},
	}
}
