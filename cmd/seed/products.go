package main

import "github.com/antonminaichev/storefront/internal/types/product"

var sampleProducts = []product.Product{
	{Name: "Wireless Headphones", Description: "Premium noise-cancelling wireless headphones with 30-hour battery life", Price: 299.99, Image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500", Category: "Electronics", Stock: 50, Rating: 4.5, Reviews: 128},
	{Name: "Smart Watch", Description: "Fitness tracking smartwatch with heart rate monitor and GPS", Price: 399.99, Image: "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500", Category: "Electronics", Stock: 30, Rating: 4.7, Reviews: 256},
	{Name: "Laptop Backpack", Description: "Durable water-resistant backpack with laptop compartment", Price: 79.99, Image: "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=500", Category: "Accessories", Stock: 100, Rating: 4.3, Reviews: 89},
	{Name: "Mechanical Keyboard", Description: "RGB mechanical gaming keyboard with customizable keys", Price: 149.99, Image: "https://images.unsplash.com/photo-1587829741301-dc798b83add3?w=500", Category: "Electronics", Stock: 45, Rating: 4.6, Reviews: 167},
	{Name: "Wireless Mouse", Description: "Ergonomic wireless mouse with precision tracking", Price: 49.99, Image: "https://images.unsplash.com/photo-1527864550417-7fd91fc51a46?w=500", Category: "Electronics", Stock: 80, Rating: 4.4, Reviews: 203},
	{Name: "USB-C Hub", Description: "7-in-1 USB-C hub with HDMI, USB 3.0, and SD card reader", Price: 59.99, Image: "https://images.unsplash.com/photo-1625948515291-69613efd103f?w=500", Category: "Accessories", Stock: 60, Rating: 4.2, Reviews: 94},
	{Name: "Portable Charger", Description: "20000mAh power bank with fast charging support", Price: 39.99, Image: "https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=500", Category: "Accessories", Stock: 120, Rating: 4.5, Reviews: 312},
	{Name: "Webcam HD", Description: "1080p HD webcam with built-in microphone", Price: 89.99, Image: "https://images.unsplash.com/photo-1587825140708-dfaf72ae4b04?w=500", Category: "Electronics", Stock: 40, Rating: 4.3, Reviews: 145},
}
